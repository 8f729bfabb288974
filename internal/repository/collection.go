package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/teamhub-go-api/internal/models"
)

// Remote table names.
const (
	TableInventory   = "inventory"
	TableEvents      = "events"
	TableActivities  = "activities"
	TableTeamMembers = "team_members"
)

// Tables lists every remote table the data store loads.
func Tables() []string {
	return []string{TableInventory, TableEvents, TableActivities, TableTeamMembers}
}

// Collection is the uniform contract for one remote table. Every call is a
// single round trip with no retry and no local caching.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft any) (T, error)
	Update(ctx context.Context, id int64, patch any) (T, error)
	Remove(ctx context.Context, id int64) error
}

type remoteCollection[T any] struct {
	client *Client
	table  string
}

// NewCollection binds a table name to the remote client.
func NewCollection[T any](client *Client, table string) Collection[T] {
	return &remoteCollection[T]{client: client, table: table}
}

func (r *remoteCollection[T]) path(extra url.Values) string {
	query := url.Values{"table": {r.table}}
	for key, values := range extra {
		query[key] = values
	}
	return "/api/db?" + query.Encode()
}

func (r *remoteCollection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.client.call(ctx, r.table, "list", http.MethodGet, r.path(nil), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *remoteCollection[T]) Create(ctx context.Context, draft any) (T, error) {
	var created T
	if err := r.client.call(ctx, r.table, "create", http.MethodPost, r.path(nil), draft, &created); err != nil {
		var zero T
		return zero, err
	}
	return created, nil
}

// Update sends PUT with the id merged into the body, as the remote expects.
func (r *remoteCollection[T]) Update(ctx context.Context, id int64, patch any) (T, error) {
	body, err := withID(id, patch)
	if err != nil {
		var zero T
		return zero, err
	}

	var updated T
	if err := r.client.call(ctx, r.table, "update", http.MethodPut, r.path(nil), body, &updated); err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func (r *remoteCollection[T]) Remove(ctx context.Context, id int64) error {
	extra := url.Values{"id": {strconv.FormatInt(id, 10)}}
	return r.client.call(ctx, r.table, "remove", http.MethodDelete, r.path(extra), nil, nil)
}

// Collections groups the four remote tables consumed by the data store.
type Collections struct {
	Inventory   Collection[models.InventoryItem]
	Events      Collection[models.Event]
	Activities  Collection[models.Activity]
	TeamMembers Collection[models.TeamMember]
}

// NewCollections binds every managed table to the client.
func NewCollections(client *Client) Collections {
	return Collections{
		Inventory:   NewCollection[models.InventoryItem](client, TableInventory),
		Events:      NewCollection[models.Event](client, TableEvents),
		Activities:  NewCollection[models.Activity](client, TableActivities),
		TeamMembers: NewCollection[models.TeamMember](client, TableTeamMembers),
	}
}
