//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are never counted.
var skipDirs = map[string]bool{".git": true, "vendor": true, "_examples": true, "magefiles": true, binaryDir: true}

// Stats prints Go line counts per top-level tree and the word count of the
// Markdown documents at the repository root, as one JSON record.
func Stats() error {
	record := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		n := bytes.Count(data, []byte("\n"))
		kind := "go_loc_prod"
		if strings.HasSuffix(path, "_test.go") {
			kind = "go_loc_test"
		}
		record[kind] += n
		record["go_loc_"+strings.SplitN(filepath.ToSlash(path), "/", 2)[0]] += n
		return nil
	})
	if err != nil {
		return err
	}
	record["go_loc"] = record["go_loc_prod"] + record["go_loc_test"]

	docs, err := filepath.Glob("*.md")
	if err != nil {
		return err
	}
	for _, path := range docs {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		record["doc_wc"] += len(strings.Fields(string(data)))
	}

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}
