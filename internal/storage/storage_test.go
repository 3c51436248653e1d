package storage

import (
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

// Link-less items all carry an empty url; the unique url index must
// not collapse them into a single persistable row.
func TestArticleURLIndexSkipsEmptyLinks(t *testing.T) {
	s, err := schema.Parse(&Article{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse article schema: %v", err)
	}

	for _, idx := range s.ParseIndexes() {
		for _, f := range idx.Fields {
			if f.DBName != "url" {
				continue
			}
			if idx.Class != "UNIQUE" {
				t.Fatalf("url index %s is not unique", idx.Name)
			}
			if idx.Where != "url <> ''" {
				t.Fatalf("url index %s must exclude empty urls, got where clause %q", idx.Name, idx.Where)
			}
			return
		}
	}
	t.Fatal("no index covers the url column")
}
