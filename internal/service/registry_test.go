package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryPage(ids []int, total int) string {
	records := ""
	for i, id := range ids {
		if i > 0 {
			records += ","
		}
		records += fmt.Sprintf(
			`{"_id":%d,"First Name":" Jane ","Last Name":"Doe","Municipality":"Toronto ","Affiliation":"Humanist"}`,
			id,
		)
	}
	return fmt.Sprintf(`{"result":{"records":[%s],"total":%d}}`, records, total)
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "res-1", r.URL.Query().Get("resource_id"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "4", r.URL.Query().Get("offset"))
		fmt.Fprint(w, registryPage([]int{5, 6}, 10))
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, "res-1", 2)
	records, total, err := c.FetchPage(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, 10, total)
	require.Len(t, records, 2)
	assert.Equal(t, 5, records[0].OntarioID)
	assert.Equal(t, "Jane", records[0].FirstName, "names are trimmed")
	assert.Equal(t, "Toronto", records[0].Municipality)
}

func TestFetchAllPaginates(t *testing.T) {
	pages := map[string][]int{
		"0": {1, 2},
		"2": {3, 4},
		"4": {5},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids, ok := pages[r.URL.Query().Get("offset")]
		require.True(t, ok, "unexpected offset %s", r.URL.Query().Get("offset"))
		fmt.Fprint(w, registryPage(ids, 5))
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, "res-1", 2)

	var progress [][2]int
	records, err := c.FetchAll(context.Background(), func(fetched, total int) {
		progress = append(progress, [2]int{fetched, total})
	})
	require.NoError(t, err)

	require.Len(t, records, 5)
	for i, r := range records {
		assert.Equal(t, i+1, r.OntarioID)
	}
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress)
}

func TestFetchAllSinglePage(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, registryPage([]int{1, 2, 3}, 3))
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, "res-1", 1000)
	records, err := c.FetchAll(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, records, 3)
	assert.Equal(t, 1, calls)
}

func TestFetchPageMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	c := NewRegistryClient(srv.URL, "res-1", 100)
	_, _, err := c.FetchPage(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestFetchAllHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, registryPage([]int{1}, 100))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewRegistryClient(srv.URL, "res-1", 1)

	_, err := c.FetchAll(ctx, func(fetched, total int) {
		cancel()
	})
	require.ErrorIs(t, err, context.Canceled)
}
