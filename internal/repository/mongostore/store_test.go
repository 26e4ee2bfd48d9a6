package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

func TestStock_MockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate sku", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		r := &Stock{c: mt.Coll}
		err := r.Create(context.Background(), &domain.SKU{SKUID: "SN-9", ProductID: "P1", Available: true})
		assert.ErrorIs(mt, err, repository.ErrAlreadyExists)
	})

	mt.Run("get by sku", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "SN-9"},
			{Key: "productId", Value: "P1"},
			{Key: "status", Value: true},
		}))
		r := &Stock{c: mt.Coll}
		s, err := r.GetBySKU(context.Background(), "SN-9")
		require.NoError(mt, err)
		assert.Equal(mt, "P1", s.ProductID)
		assert.True(mt, s.Available)
	})

	mt.Run("missing sku", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		r := &Stock{c: mt.Coll}
		_, err := r.GetBySKU(context.Background(), "nope")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("update unknown order", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})
		r := &Orders{c: mt.Coll}
		err := r.Update(context.Background(), &domain.Order{ID: "OID0"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
