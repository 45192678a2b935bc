package handlers

import (
	"time"

	"murmur/models"
	"murmur/service"
)

// Ids cross the wire as decimal strings.

type authorDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type murmurDTO struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	LikeCount int64     `json:"likeCount"`
	LikedByMe bool      `json:"likedByMe"`
	Author    authorDTO `json:"author"`
}

type pageMetaDTO struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type timelineDTO struct {
	Data []murmurDTO `json:"data"`
	Meta pageMetaDTO `json:"meta"`
}

type userDTO struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	FollowerCount  int64     `json:"followerCount"`
	FollowingCount int64     `json:"followingCount"`
	IsFollowing    *bool     `json:"isFollowing,omitempty"`
}

type sessionUserDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

type authResponseDTO struct {
	AccessToken string         `json:"accessToken"`
	User        sessionUserDTO `json:"user"`
}

type murmurRequest struct {
	Content string `json:"content"`
}

type signupRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=120"`
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func toMurmurDTO(v *service.MurmurView) murmurDTO {
	return murmurDTO{
		ID:        v.ID.String(),
		Content:   v.Content,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
		LikeCount: v.LikeCount,
		LikedByMe: v.LikedByMe,
		Author: authorDTO{
			ID:          v.Author.ID.String(),
			Username:    v.Author.Username,
			DisplayName: v.Author.DisplayName,
		},
	}
}

func toTimelineDTO(p *service.TimelinePage) timelineDTO {
	data := make([]murmurDTO, 0, len(p.Data))
	for i := range p.Data {
		data = append(data, toMurmurDTO(&p.Data[i]))
	}
	return timelineDTO{
		Data: data,
		Meta: pageMetaDTO{
			Total:      p.Meta.Total,
			Page:       p.Meta.Page,
			Limit:      p.Meta.Limit,
			TotalPages: p.Meta.TotalPages,
		},
	}
}

func toUserDTO(p *service.Profile) userDTO {
	return userDTO{
		ID:             p.ID.String(),
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		Email:          p.Email,
		CreatedAt:      p.CreatedAt,
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		IsFollowing:    p.IsFollowing,
	}
}

func toSessionUserDTO(u *models.User) sessionUserDTO {
	dto := sessionUserDTO{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
	if u.Email != nil {
		dto.Email = *u.Email
	}
	return dto
}
