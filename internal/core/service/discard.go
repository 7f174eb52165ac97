package service

import (
	"context"

	"github.com/jinlabs/users-management/internal/core/domain"
)

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, domain.UserEvent) {}
