package redis

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"eseva-portal/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// b64Cipher stands in for AES-GCM. It keeps the order binding so a record
// copied under another key fails to open.
type b64Cipher struct{}

func (b64Cipher) Seal(orderID string, plaintext []byte) (string, error) {
	return orderID + ":" + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (b64Cipher) Open(orderID, sealed string) ([]byte, error) {
	body, ok := strings.CutPrefix(sealed, orderID+":")
	if !ok {
		return nil, errors.New("sealed for another order")
	}
	return base64.StdEncoding.DecodeString(body)
}

func newStagedStore(t *testing.T) (*StagedUploadStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewStagedUploadStore(client, b64Cipher{}), s
}

func newStaged(orderID string, ttl time.Duration) *domain.StagedUpload {
	now := time.Now().UTC()
	return &domain.StagedUpload{
		OrderID:     orderID,
		AccountID:   uuid.New(),
		ServiceType: domain.ServiceITR,
		Amount:      200,
		Fields: map[string]string{
			"aadharCardNo": "123412341234",
			"panCardNo":    "ABCDE1234F",
			"accountNo":    "0011223344",
			"ifscCode":     "SBIN0000001",
		},
		Files: map[string]string{
			"aadharFile": "uploads/temp/" + orderID + "/aadharFile_1.pdf",
		},
		Customer:  domain.Customer{Name: "Ravi", Email: "ravi@example.com", Phone: "9999999999"},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestStagedUploadStore_SaveAndGet(t *testing.T) {
	store, _ := newStagedStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()
	in := newStaged(orderID, time.Hour)

	require.NoError(t, store.Save(ctx, in, time.Hour))

	got, err := store.Get(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.AccountID, got.AccountID)
	assert.Equal(t, in.Fields, got.Fields)
	assert.Equal(t, in.Files, got.Files)
	assert.Equal(t, int64(200), got.Amount)
	assert.Equal(t, "Ravi", got.Customer.Name)
}

func TestStagedUploadStore_FieldsAreSealedAtRest(t *testing.T) {
	store, mr := newStagedStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, store.Save(ctx, newStaged(orderID, time.Hour), time.Hour))

	raw, err := mr.Get("staged:" + orderID)
	require.NoError(t, err)
	assert.NotContains(t, raw, "ABCDE1234F")
	assert.NotContains(t, raw, "123412341234")
	assert.Contains(t, raw, `"sealed_fields":"`+orderID+`:`)
}

func TestStagedUploadStore_RecordCopiedToAnotherOrderFails(t *testing.T) {
	store, mr := newStagedStore(t)
	ctx := context.Background()
	orderID, other := uuid.NewString(), uuid.NewString()

	require.NoError(t, store.Save(ctx, newStaged(orderID, time.Hour), time.Hour))
	raw, err := mr.Get("staged:" + orderID)
	require.NoError(t, err)
	require.NoError(t, mr.Set("staged:"+other, raw))

	_, err = store.Get(ctx, other)
	assert.Error(t, err)
}

func TestStagedUploadStore_ExpiresWithTTL(t *testing.T) {
	store, mr := newStagedStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, store.Save(ctx, newStaged(orderID, time.Hour), time.Hour))

	ok, err := store.Exists(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Hour + time.Second)

	got, err := store.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = store.Exists(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStagedUploadStore_PastDeadlineIsTreatedAsMissing(t *testing.T) {
	store, _ := newStagedStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()
	in := newStaged(orderID, time.Hour)
	in.ExpiresAt = time.Now().Add(-time.Second)

	require.NoError(t, store.Save(ctx, in, time.Hour))

	got, err := store.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStagedUploadStore_Delete(t *testing.T) {
	store, _ := newStagedStore(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, store.Save(ctx, newStaged(orderID, time.Hour), time.Hour))
	require.NoError(t, store.Delete(ctx, orderID))
	require.NoError(t, store.Delete(ctx, orderID))

	got, err := store.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStagedUploadStore_GetMissing(t *testing.T) {
	store, _ := newStagedStore(t)

	got, err := store.Get(context.Background(), "no-such-order")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
