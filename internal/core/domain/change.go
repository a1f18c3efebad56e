package domain

// ChangeOp is the kind of row change announced by the platform.
type ChangeOp string

const (
	// OpInsert announces a new row.
	OpInsert ChangeOp = "INSERT"
	// OpUpdate announces a modified row.
	OpUpdate ChangeOp = "UPDATE"
	// OpDelete announces a removed row.
	OpDelete ChangeOp = "DELETE"
)

// Platform tables that carry cached data.
const (
	TableProducts = "products"
	TableShops    = "seller_shops"
	TableMessages = "messages"
)

// ChangeEvent is a single row change received from the platform's realtime feed.
type ChangeEvent struct {
	Table  string
	Op     ChangeOp
	Record map[string]any
}

// StringField returns the string value of a record column, or "" when absent.
func (e ChangeEvent) StringField(name string) string {
	if e.Record == nil {
		return ""
	}
	s, _ := e.Record[name].(string)
	return s
}

// Invalidation names the cached queries made stale by a change. Keys are
// dropped exactly, Prefixes drop whole query families.
type Invalidation struct {
	Keys     []string
	Prefixes []string
}

// IsEmpty reports whether nothing is invalidated.
func (i Invalidation) IsEmpty() bool {
	return len(i.Keys) == 0 && len(i.Prefixes) == 0
}

// Invalidation returns the queries made stale by the change. A change without
// an identifying column invalidates the whole family. Unknown tables yield nothing.
func (e ChangeEvent) Invalidation() Invalidation {
	switch e.Table {
	case TableProducts:
		inv := Invalidation{Prefixes: []string{ProductsPrefix}}
		if id := e.StringField("id"); id != "" {
			inv.Keys = []string{ProductKey(id)}
		} else {
			inv.Prefixes = append(inv.Prefixes, ProductPrefix)
		}
		return inv
	case TableShops:
		if seller := e.StringField("seller_id"); seller != "" {
			return Invalidation{Keys: []string{ShopBySellerKey(seller)}}
		}
		return Invalidation{Prefixes: []string{ShopPrefix}}
	case TableMessages:
		return Invalidation{Prefixes: []string{ConversationsPrefix}}
	default:
		return Invalidation{}
	}
}
