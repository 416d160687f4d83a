package ipfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGatewayURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ipfs://QmHash123", "https://dweb.link/ipfs/QmHash123"},
		{"ipfs://QmHash123/image.png", "https://dweb.link/ipfs/QmHash123/image.png"},
		{"https://ipfs.io/ipfs/QmHash123", "https://dweb.link/ipfs/QmHash123"},
		{"https://gw.mypinata.cloud/ipfs/QmHash123", "https://gw.mypinata.cloud/ipfs/QmHash123"},
		{"https://cloudflare-ipfs.com/ipfs/QmHash123", "https://dweb.link/ipfs/QmHash123"},
		{"https://dweb.link/ipfs/QmHash123", "https://dweb.link/ipfs/QmHash123"},
		{"https://example.com/image.png", "https://example.com/image.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToGatewayURL(tc.in), "input %q", tc.in)
	}
}

func TestFetchURL(t *testing.T) {
	assert.Equal(t, "https://ipfs.io/ipfs/QmA", FetchURL("ipfs://QmA", ""))
	assert.Equal(t, "https://gw.mypinata.cloud/ipfs/QmA", FetchURL("ipfs://QmA", "gw.mypinata.cloud"))
	assert.Equal(t, "https://example.com/meta.json", FetchURL("https://example.com/meta.json", "gw.mypinata.cloud"))
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			w.Write([]byte(`{"title":"Sunset","image":"ipfs://QmImg"}`))
		case "/null.json":
			w.Write([]byte(`null`))
		case "/false.json":
			w.Write([]byte(`false`))
		case "/zero.json":
			w.Write([]byte(` 0 `))
		case "/empty.json":
			w.Write([]byte(`""`))
		case "/empty-object.json":
			w.Write([]byte(`{}`))
		case "/text":
			w.Write([]byte(`not json`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher("", WithTimeout(50*time.Millisecond))
	ctx := context.Background()

	doc := f.FetchJSON(ctx, srv.URL+"/ok.json")
	require.NotNil(t, doc)
	assert.JSONEq(t, `{"title":"Sunset","image":"ipfs://QmImg"}`, string(doc))

	assert.Nil(t, f.FetchJSON(ctx, ""))
	assert.Nil(t, f.FetchJSON(ctx, srv.URL+"/missing"))
	for _, p := range []string{"/null.json", "/false.json", "/zero.json", "/empty.json"} {
		assert.Nil(t, f.FetchJSON(ctx, srv.URL+p), p)
	}
	assert.NotNil(t, f.FetchJSON(ctx, srv.URL+"/empty-object.json"))
	assert.Nil(t, f.FetchJSON(ctx, srv.URL+"/text"))
	assert.Nil(t, f.FetchJSON(ctx, srv.URL+"/slow"))
}
