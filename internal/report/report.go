package report

import (
	"encoding/json"
	"os"
)

// SaveListingJSON writes the listing as indented JSON for machine consumers.
func SaveListingJSON(doc ListingDocument, out string) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

// LoadListingJSON reads a listing previously written by SaveListingJSON.
func LoadListingJSON(path string) (ListingDocument, error) {
	var doc ListingDocument
	b, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(b, &doc)
	return doc, err
}
