package warehouse

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exactDecimal struct{ f float64 }

func (d exactDecimal) Float64() (float64, bool) { return d.f, true }

type plainDecimal struct{ f float64 }

func (d plainDecimal) Float64() float64 { return d.f }

func TestNormalize(t *testing.T) {
	s := "hello"
	var nilPtr *int64
	id := uuid.MustParse("3f2b8c1e-9d4a-4c55-8e7f-0a1b2c3d4e5f")

	var numeric pgtype.Numeric
	require.NoError(t, numeric.Scan("1234.5"))

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "int32", in: int32(7), want: int64(7)},
		{name: "uint16", in: uint16(7), want: int64(7)},
		{name: "huge uint64", in: uint64(math.MaxUint64), want: float64(math.MaxUint64)},
		{name: "float32", in: float32(1.5), want: 1.5},
		{name: "NaN", in: math.NaN(), want: "NaN"},
		{name: "bytes", in: []byte("abc"), want: "abc"},
		{name: "pointer", in: &s, want: "hello"},
		{name: "nil pointer", in: nilPtr, want: nil},
		{name: "rat", in: big.NewRat(5, 2), want: 2.5},
		{name: "big int", in: big.NewInt(42), want: int64(42)},
		{name: "pg numeric", in: numeric, want: 1234.5},
		{name: "pg null numeric", in: pgtype.Numeric{}, want: nil},
		{name: "uuid bytes", in: [16]byte(id), want: id.String()},
		{name: "exact decimal", in: exactDecimal{3.25}, want: 3.25},
		{name: "plain decimal", in: plainDecimal{9.5}, want: 9.5},
		{name: "midnight", in: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), want: "2023-04-01"},
		{name: "timestamp", in: time.Date(2023, 4, 1, 13, 5, 9, 0, time.UTC), want: "2023-04-01 13:05:09"},
		{name: "duration", in: 90 * time.Second, want: "1m30s"},
		{name: "repeated", in: []any{int64(1), "a"}, want: `[1,"a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCleanSQL(t *testing.T) {
	assert.Equal(t, "SELECT 1", CleanSQL("  SELECT 1;  "))
	assert.Equal(t, "SELECT 1", CleanSQL("SELECT 1 ; ;"))
	assert.Equal(t, "", CleanSQL(" ; "))
}

func TestQueryExecutionError(t *testing.T) {
	err := error(&QueryExecutionError{Dialect: DialectBigQuery, SQL: "SELECT", Err: ErrEmptyQuery})
	assert.ErrorIs(t, err, ErrQueryExecution)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, "error executing query on bigquery: empty query", err.Error())
}
