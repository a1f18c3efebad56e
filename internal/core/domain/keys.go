package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// KeySeparator delimits the segments of a hierarchical cache key.
const KeySeparator = ":"

// Key prefixes for the marketplace query families. Prefix invalidation relies on
// every key of a family starting with its prefix.
const (
	ProductsPrefix      = "products" + KeySeparator
	ProductPrefix       = "product" + KeySeparator
	ShopPrefix          = "shop" + KeySeparator
	ConversationsPrefix = "conversations" + KeySeparator
)

// Key joins segments into a cache key.
func Key(segments ...string) string {
	return strings.Join(segments, KeySeparator)
}

// ProductsBySellerKey is the key of a seller's product list.
func ProductsBySellerKey(sellerID string) string {
	return Key("products", "seller", sellerID)
}

// ProductKey is the key of a single product page.
func ProductKey(productID string) string {
	return Key("product", productID)
}

// ProductListKey is the key of a filtered product listing. The filter is encoded
// with sorted query parameters so equal filters share a key.
func ProductListKey(f ProductFilter) string {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		v.Set("offset", strconv.Itoa(f.Offset))
	}
	return Key("products", "list", v.Encode())
}

// ShopBySellerKey is the key of a seller's shop profile.
func ShopBySellerKey(sellerID string) string {
	return Key("shop", "seller", sellerID)
}

// ConversationsKey is the key of a user's conversation list.
func ConversationsKey(userID string) string {
	return Key("conversations", "user", userID)
}

// HasKeyPrefix reports whether key belongs to the family named by prefix.
func HasKeyPrefix(key, prefix string) bool {
	return strings.HasPrefix(key, prefix)
}
