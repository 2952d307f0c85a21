package repositories

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_ListPaging(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantTail      string
		wantArgs      []driver.Value
	}{
		{"zero limit returns all rows", 0, 0, "ORDER BY name ASC, id ASC", nil},
		{"limit only", 10, 0, "ORDER BY name ASC, id ASC LIMIT $1", []driver.Value{10}},
		{"offset only", 0, 20, "ORDER BY name ASC, id ASC OFFSET $1", []driver.Value{20}},
		{"both", 10, 20, "ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2", []driver.Value{10, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgresTeamRepository(db)

			expect := mock.ExpectQuery(regexp.QuoteMeta(tt.wantTail) + "$")
			if tt.wantArgs != nil {
				expect.WithArgs(tt.wantArgs...)
			}
			expect.WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sponsor_name", "created_at"}).
				AddRow(uuid.New().String(), "Knights", "", time.Now()))

			teams, err := repo.List(context.Background(), tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Len(t, teams, 1)
		})
	}
}
