package objrepo

import "context"

// Collection is a handle bound to one registered CollectionClass, obtained
// from Repository.CreateCollection. All its methods delegate back to the
// owning repository, scoped to this collection's class.
type Collection struct {
	repo  *Repository
	class CollectionClass
}

// Class returns the collection's schema entry.
func (c *Collection) Class() CollectionClass {
	return c.class
}

// Indexes returns the field names this collection declares secondary indexes
// on.
func (c *Collection) Indexes() []string {
	return c.class.Indexes
}

func (c *Collection) GetItem(ctx context.Context, item Item, opts ItemOptions) (Item, error) {
	return c.repo.GetItem(ctx, item, opts)
}

func (c *Collection) PutItem(ctx context.Context, item Item, opts ItemOptions) error {
	return c.repo.PutItem(ctx, item, opts)
}

func (c *Collection) DeleteItem(ctx context.Context, item Item, opts ItemOptions) (bool, error) {
	return c.repo.DeleteItem(ctx, item, opts)
}

func (c *Collection) GetItems(ctx context.Context, items []Item, opts ItemOptions) ([]Item, error) {
	return c.repo.GetItems(ctx, items, opts)
}

func (c *Collection) FindItems(ctx context.Context, opts QueryOptions) ([]Item, error) {
	return c.repo.FindItems(ctx, c, opts)
}

func (c *Collection) CountItems(ctx context.Context, opts QueryOptions) (int, error) {
	return c.repo.CountItems(ctx, c, opts)
}

func (c *Collection) ForEachItems(ctx context.Context, opts QueryOptions, fn func(ctx context.Context, item Item) error) error {
	return c.repo.ForEachItems(ctx, c, opts, fn)
}

func (c *Collection) FindAndDeleteItems(ctx context.Context, opts QueryOptions) (int, error) {
	return c.repo.FindAndDeleteItems(ctx, c, opts)
}
