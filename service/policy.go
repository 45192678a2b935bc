package service

import "murmur/models"

// CanMutate reports whether requester may edit or delete m. Only the author may.
func CanMutate(requesterID models.ID, m *models.Murmur) bool {
	return m != nil && requesterID == m.UserID
}
