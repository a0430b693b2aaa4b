package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/hookbot/internal/core/wishes"
)

// WishesCheck verifies that the wish list loads.
type WishesCheck struct {
	file string
}

// NewWishesCheck creates a new wish list check.
func NewWishesCheck(file string) *WishesCheck {
	return &WishesCheck{file: file}
}

func (c *WishesCheck) Name() string {
	return "Wish List"
}

func (c *WishesCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	list, err := wishes.LoadFile(c.file)
	if err != nil {
		result.Items = append(result.Items, fail("Load", err.Error()))
		return result
	}

	result.Items = append(result.Items, pass("Load", fmt.Sprintf("%d wishes from %s", list.Len(), c.file)))

	return result
}
