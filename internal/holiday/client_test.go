package holiday

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holidayJSON2025 = `{
	"code": 0,
	"holiday": {
		"01-01": {"holiday": true, "name": "元旦", "wage": 3, "date": "2025-01-01"},
		"01-26": {"holiday": false, "name": "春节前补班", "wage": 1, "date": "2025-01-26"},
		"02-01": {"holiday": true, "name": "初四", "wage": 2, "date": "2025-02-01"}
	}
}`

func TestFetchYear(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/cn/2025.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(holidayJSON2025))
		case "/cn/2031.json":
			http.NotFound(w, r)
		case "/cn/1999.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, time.Minute)

	t.Run("keys table by full date", func(t *testing.T) {
		table, err := client.FetchYear("cn", 2025)
		require.NoError(t, err)
		assert.Len(t, table, 3)

		newYear, ok := table["2025-01-01"]
		require.True(t, ok)
		assert.True(t, newYear.Holiday)
		assert.Equal(t, 3, newYear.Wage)

		makeup, ok := table["2025-01-26"]
		require.True(t, ok)
		assert.False(t, makeup.Holiday)
	})

	t.Run("second fetch is served from cache", func(t *testing.T) {
		before := atomic.LoadInt32(&hits)
		_, err := client.FetchYear("cn", 2025)
		require.NoError(t, err)
		assert.Equal(t, before, atomic.LoadInt32(&hits))
	})

	t.Run("missing year is an empty table, not an error", func(t *testing.T) {
		table, err := client.FetchYear("cn", 2031)
		require.NoError(t, err)
		assert.Empty(t, table)
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		_, err := client.FetchYear("cn", 1999)
		assert.Error(t, err)
	})
}

func TestFetchRangePartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cn/2025.json":
			w.Write([]byte(holidayJSON2025))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, time.Minute)

	table, err := client.FetchRange("cn", 2025, 2026)
	assert.Error(t, err, "the failed year should be reported")
	assert.Len(t, table, 3, "the successful year should still be usable")
}
