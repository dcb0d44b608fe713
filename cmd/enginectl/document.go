package main

import (
	"fmt"
	"os"

	"logicmesh/loader"
)

func readDocument(path string) (loader.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return loader.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := loader.Parse(raw)
	if err != nil {
		return loader.Document{}, err
	}
	return doc, nil
}
