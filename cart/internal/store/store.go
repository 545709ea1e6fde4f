package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
)

type ActionType string

const (
	ActionAddItem        ActionType = "add_item"
	ActionRemoveItem     ActionType = "remove_item"
	ActionClearCart      ActionType = "clear_cart"
	ActionSetAccessToken ActionType = "set_access_token"
)

type Action struct {
	Type   ActionType
	Item   request.CartItem
	ItemID uuid.UUID
	Token  string
}

func AddItem(item request.CartItem) Action {
	return Action{Type: ActionAddItem, Item: item}
}

func RemoveItem(id uuid.UUID) Action {
	return Action{Type: ActionRemoveItem, ItemID: id}
}

func ClearCart() Action {
	return Action{Type: ActionClearCart}
}

func SetAccessToken(token string) Action {
	return Action{Type: ActionSetAccessToken, Token: token}
}

// Event is published to subscribers after every successful dispatch.
type Event struct {
	Session string     `json:"session"`
	Action  ActionType `json:"action"`
}

// Store is one session's cart state: the item list and the access token.
type Store interface {
	Items(c context.Context) ([]request.CartItem, error)
	// AccessToken returns ErrEmptyAccessToken when no token is stored or the
	// stored one has expired.
	AccessToken(c context.Context) (string, error)
	// Subscribe delivers an Event per dispatch until unsubscribe is called or
	// c is done. Slow subscribers may miss events.
	Subscribe(c context.Context) (events <-chan Event, unsubscribe func(), err error)
	Dispatch(c context.Context, action Action) error
}

type Stores interface {
	ForSession(session string) Store
}

// Reduce applies an item action to the item list and returns the new list.
// Adding an item already in the cart accumulates its amount; removing takes
// away one unit and drops the line when none is left.
func Reduce(items []request.CartItem, action Action) ([]request.CartItem, error) {
	switch action.Type {
	case ActionAddItem:
		next := make([]request.CartItem, 0, len(items)+1)
		merged := false
		for _, item := range items {
			if item.ID == action.Item.ID {
				item.Amount += action.Item.Amount
				merged = true
			}
			next = append(next, item)
		}
		if !merged {
			next = append(next, action.Item)
		}
		return next, nil
	case ActionRemoveItem:
		next := make([]request.CartItem, 0, len(items))
		found := false
		for _, item := range items {
			if item.ID == action.ItemID {
				found = true
				item.Amount--
				if item.Amount <= 0 {
					continue
				}
			}
			next = append(next, item)
		}
		if !found {
			return items, fmt.Errorf("failed removing cartItemId=%s with error=%w", action.ItemID, commonErrors.ErrCartItemNotFound)
		}
		return next, nil
	case ActionClearCart:
		return []request.CartItem{}, nil
	}
	return items, fmt.Errorf("failed reducing action=%s with error=%w", action.Type, commonErrors.ErrUnknownAction)
}
