package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
)

type testCatalog struct {
	entity.BaseCatalog
	Code  string `db:"code" json:"code"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "code", "name", "email",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code:  "CUST-001",
		Name:  "Acme Machining",
		Email: "rfq@acme.example",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "CUST-001", m["code"])
	assert.Equal(t, "Acme Machining", m["name"])
	assert.Equal(t, "rfq@acme.example", m["email"])
}

func TestStructToMapSkipsIgnoredFields(t *testing.T) {
	type withIgnored struct {
		Code  string `db:"code"`
		Lines []int  `db:"-"`
		Note  string
	}

	m := StructToMap(withIgnored{Code: "X", Lines: []int{1}, Note: "n"})

	assert.Equal(t, map[string]any{"code": "X"}, m)
}
