package service

import (
	"strconv"
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/utils"
)

type JWTAccessIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTAccessIssuer) IssueAccessToken(user entity.User) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, utils.ErrInvalidToken
	}
	subject := strconv.FormatUint(uint64(user.ID), 10)
	return j.Manager.IssueAccessToken(subject, user.Email, user.Username, string(user.Role))
}
