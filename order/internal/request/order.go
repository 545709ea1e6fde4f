package request

import (
	"github.com/google/uuid"
)

type FindOrderById struct {
	UserId  uuid.UUID `validate:"required"`
	OrderId uuid.UUID `validate:"required"`
}
