package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

// decodeBlogPost accepts text only when it is a JSON object whose key set is exactly
// provider.BlogPostKeys.
func decodeBlogPost(text string) (provider.BlogPost, error) {
	var post provider.BlogPost
	if !gjson.Valid(text) {
		return post, errors.New("response is not valid JSON")
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return post, fmt.Errorf("response is a JSON %s, not an object", root.Type)
	}

	var keys []string
	root.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	slices.Sort(keys)
	want := slices.Clone(provider.BlogPostKeys)
	slices.Sort(want)
	if !slices.Equal(keys, want) {
		return post, fmt.Errorf("response keys %v, want %v", keys, want)
	}

	if err := json.Unmarshal([]byte(text), &post); err != nil {
		return post, fmt.Errorf("decode blog post: %w", err)
	}
	return post, nil
}
