package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSteamID = "76561198000000001"

const inventoryFixture = `{
	"assets":[{"assetid":"1","classid":"100"},{"assetid":"2","classid":"200"},{"assetid":"3","classid":"300"}],
	"descriptions":[
		{"classid":"100","market_name":"AK-47 | Redline (Field-Tested)","icon_url":"ak-icon","marketable":1,"tradable":1},
		{"classid":"200","market_name":"Operation Coin","icon_url":"coin-icon","marketable":0,"tradable":0},
		{"classid":"300","market_name":"Glock-18 | Fade (Factory New)","icon_url":"glock-icon","marketable":1,"tradable":0}
	],
	"total_inventory_count":3,
	"success":1
}`

func TestSteamFetchInventory(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(inventoryFixture))
	}))
	defer srv.Close()

	inv, err := NewSteamClient(srv.Client(), srv.URL+"/inventory/").FetchInventory(context.Background(), testSteamID)
	require.NoError(t, err)

	assert.Equal(t, "/inventory/"+testSteamID+"/730/2", gotPath)
	assert.Equal(t, "l=english&count=5000", gotQuery)
	assert.Len(t, inv.Assets, 3)
	assert.Len(t, inv.Descriptions, 3)
	assert.Equal(t, 3, inv.TotalCount)
}

func TestSteamFetchInventoryStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "private", status: http.StatusForbidden, wantErr: ErrInventoryPrivate},
		{name: "throttled", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "other", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewSteamClient(srv.Client(), srv.URL).FetchInventory(context.Background(), testSteamID)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
