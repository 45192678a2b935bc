// Package seed loads the demo dataset: four users, their follows, seven
// murmurs and eight likes.
package seed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"murmur/models"
)

// Password is shared by every seeded user.
const Password = "password123"

type userSpec struct {
	username, displayName string
}

var users = []userSpec{
	{"alice", "Alice Johnson"},
	{"bob", "Bob Smith"},
	{"charlie", "Charlie Brown"},
	{"diana", "Diana Prince"},
}

// follower -> following, by username
var follows = [][2]string{
	{"alice", "bob"},
	{"alice", "charlie"},
	{"bob", "alice"},
	{"bob", "diana"},
	{"charlie", "alice"},
	{"charlie", "bob"},
}

var murmurs = []struct {
	author, content string
}{
	{"alice", "Hello from Alice! This is my first murmur."},
	{"bob", "Bob here! Having a great day coding."},
	{"charlie", "Charlie checking in. Go is awesome!"},
	{"alice", "Just deployed my new app to production! 🚀"},
	{"diana", "Diana here! Learning about microservices architecture."},
	{"bob", "Debugging is like being a detective in a crime movie where you are also the murderer."},
	{"alice", "Working on the weekend? More like working FOR the weekend!"},
}

// likes pairs a username with an index into murmurs.
var likes = []struct {
	user   string
	murmur int
}{
	{"bob", 0},
	{"charlie", 0},
	{"alice", 1},
	{"charlie", 1},
	{"alice", 2},
	{"bob", 3},
	{"diana", 3},
	{"alice", 5},
}

type Result struct {
	Users   map[string]models.ID
	Murmurs int
	Follows int
	Likes   int
}

// Run wipes all tables and inserts the dataset in one transaction. Murmurs
// are spaced a minute apart ending at now, so the timeline order matches
// insertion order.
func Run(ctx context.Context, db *gorm.DB, now time.Time) (*Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res := &Result{Users: make(map[string]models.ID, len(users))}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.MurmurLike{}, &models.Murmur{}, &models.Follow{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}

		for _, u := range users {
			email := u.username + "@example.com"
			user := &models.User{
				Username:     u.username,
				DisplayName:  u.displayName,
				Email:        &email,
				PasswordHash: string(hash),
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", u.username, err)
			}
			res.Users[u.username] = user.ID
		}

		edges := make([]models.Follow, 0, len(follows))
		for _, f := range follows {
			edges = append(edges, models.Follow{FollowerID: res.Users[f[0]], FollowingID: res.Users[f[1]]})
		}
		if err := tx.Omit(clause.Associations).Create(&edges).Error; err != nil {
			return fmt.Errorf("create follows: %w", err)
		}
		res.Follows = len(edges)

		ids := make([]models.ID, len(murmurs))
		start := now.Add(-time.Duration(len(murmurs)-1) * time.Minute)
		for i, m := range murmurs {
			at := start.Add(time.Duration(i) * time.Minute)
			row := &models.Murmur{UserID: res.Users[m.author], Content: m.content, CreatedAt: at, UpdatedAt: at}
			if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
				return fmt.Errorf("create murmur: %w", err)
			}
			ids[i] = row.ID
		}
		res.Murmurs = len(ids)

		rows := make([]models.MurmurLike, 0, len(likes))
		for _, l := range likes {
			rows = append(rows, models.MurmurLike{UserID: res.Users[l.user], MurmurID: ids[l.murmur]})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("create likes: %w", err)
		}
		res.Likes = len(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
