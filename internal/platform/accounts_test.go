package platform

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAccounts_NoAlias(t *testing.T) {
	f := &fakeService{accountsStatus: http.StatusOK, accountsBody: `{"value":[]}`}
	ts, ep := startFake(t, f)
	logger, logs := observedLogger()

	got, ok := ListAccounts(context.Background(), newTestClient(ts), ep, "", logger)
	assert.Nil(t, got)
	assert.False(t, ok)
	assert.Equal(t, 0, f.accountsCalls)
	assert.Equal(t, 1, logs.FilterMessageSnippet("Cannot test account listing").Len())
}

func TestListAccounts_OK(t *testing.T) {
	f := &fakeService{
		accountsStatus: http.StatusOK,
		accountsBody:   `{"value":[{"accountName":"org1"},{"accountName":"org2"}]}`,
	}
	ts, ep := startFake(t, f)
	logger, logs := observedLogger()

	got, ok := ListAccounts(context.Background(), newTestClient(ts), ep, "xyz", logger)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, 1, f.accountsCalls)
	assert.Equal(t, "xyz", f.lastMemberID)
	assert.Equal(t, "6.0", f.lastVersion)

	count := logs.FilterMessage("Accounts retrieved").All()
	require.Len(t, count, 1)
	assert.EqualValues(t, 2, count[0].ContextMap()["count"])

	names := logs.FilterMessage("Organizations").All()
	require.Len(t, names, 1)
	assert.Equal(t, "org1, org2", names[0].ContextMap()["names"])
}

func TestListAccounts_Empty(t *testing.T) {
	f := &fakeService{accountsStatus: http.StatusOK, accountsBody: `{"count":0,"value":[]}`}
	ts, ep := startFake(t, f)
	logger, logs := observedLogger()

	got, ok := ListAccounts(context.Background(), newTestClient(ts), ep, "xyz", logger)
	assert.True(t, ok, "an empty list is still a successful listing")
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("No organizations found").Len())
	assert.Equal(t, 0, logs.FilterMessage("Organizations").Len())
}

func TestListAccounts_ErrorStatus(t *testing.T) {
	f := &fakeService{accountsStatus: http.StatusUnauthorized, accountsBody: `{"message":"denied"}`}
	ts, ep := startFake(t, f)
	logger, logs := observedLogger()

	got, ok := ListAccounts(context.Background(), newTestClient(ts), ep, "xyz", logger)
	assert.Nil(t, got)
	assert.False(t, ok)

	entries := logs.FilterMessage("Accounts request failed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusUnauthorized, entries[0].ContextMap()["status"])
	assert.Equal(t, `{"message":"denied"}`, entries[0].ContextMap()["body"])
}

func TestListAccounts_SchemaMismatch(t *testing.T) {
	f := &fakeService{accountsStatus: http.StatusOK, accountsBody: `{"items":[]}`}
	ts, ep := startFake(t, f)
	logger, logs := observedLogger()

	got, ok := ListAccounts(context.Background(), newTestClient(ts), ep, "xyz", logger)
	assert.Nil(t, got)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("Accounts request failed").Len())
}

func TestListAccounts_NoResponse(t *testing.T) {
	f := &fakeService{}
	ts, ep := startFake(t, f)
	c := newTestClient(ts)
	ts.Close()
	logger, logs := observedLogger()

	_, ok := ListAccounts(context.Background(), c, ep, "xyz", logger)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("No response from accounts endpoint").Len())
}
