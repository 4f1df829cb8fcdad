package models

import (
	"encoding/json"
	"fmt"
)

type typeExtractor struct {
	Type string `json:"$type"`
}

// typeExtract pulls the $type discriminator out of a JSON blob so union
// types can dispatch their UnmarshalJSON.
func typeExtract(b []byte) (string, error) {
	var te typeExtractor
	if err := json.Unmarshal(b, &te); err != nil {
		return "", fmt.Errorf("extracting $type: %w", err)
	}
	return te.Type, nil
}
