package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	simplejson "github.com/bitly/go-simplejson"
)

// Extractor pulls the crypto amount out of a provider's response body.
type Extractor interface {
	ExtractAmount(body []byte) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(body []byte) (string, error)

func (f ExtractorFunc) ExtractAmount(body []byte) (string, error) { return f(body) }

var errMissingField = errors.New("missing field")

// ParseBody decodes a JSON response body for path navigation.
func ParseBody(body []byte) (*simplejson.Json, error) {
	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	return js, nil
}

// Lookup walks path through nested objects, failing on the first missing key.
func Lookup(js *simplejson.Json, path ...string) (*simplejson.Json, error) {
	cur := js
	for _, key := range path {
		next, ok := cur.CheckGet(key)
		if !ok {
			return nil, fmt.Errorf("%s: %w", strings.Join(path, "."), errMissingField)
		}
		cur = next
	}
	return cur, nil
}

// AmountString renders a JSON string or number as a decimal string. Empty
// strings, nulls and any other JSON type are rejected.
func AmountString(js *simplejson.Json) (string, error) {
	switch v := js.Interface().(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", errors.New("empty amount")
		}
		return s, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "", errMissingField
	default:
		return "", fmt.Errorf("unexpected amount type %T", v)
	}
}

// FieldExtractor extracts the amount stored at a fixed object path.
func FieldExtractor(path ...string) Extractor {
	return ExtractorFunc(func(body []byte) (string, error) {
		js, err := ParseBody(body)
		if err != nil {
			return "", err
		}
		v, err := Lookup(js, path...)
		if err != nil {
			return "", err
		}
		return AmountString(v)
	})
}
