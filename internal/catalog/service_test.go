package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
)

func TestService_Get(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *catalog.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetProduct(gomock.Any(), "SKU-1").Return(&catalog.Product{SKU: "SKU-1", Price: 500}, nil)
			},
		},
		{
			name: "NotFound",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetProduct(gomock.Any(), "SKU-1").Return(nil, catalog.ErrNotFound)
			},
			wantErr: catalog.ErrNotFound,
		},
		{
			name: "StoreError",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().GetProduct(gomock.Any(), "SKU-1").Return(nil, errors.New("connection refused"))
			},
			wantErr: catalog.ErrLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := catalog.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := catalog.NewService(repo)
			got, err := svc.Get(context.Background(), "SKU-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(500), got.Price)
		})
	}
}

func TestService_Get_LookupFailureIsNotNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().GetProduct(gomock.Any(), "SKU-1").Return(nil, errors.New("timeout"))

	_, err := catalog.NewService(repo).Get(context.Background(), "SKU-1")
	assert.ErrorIs(t, err, catalog.ErrLookupFailed)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	svc := catalog.NewService(repo)

	t.Run("BlankQueryListsAll", func(t *testing.T) {
		repo.EXPECT().ListProducts(gomock.Any()).Return([]*catalog.Product{{SKU: "A"}, {SKU: "B"}}, nil)

		got, err := svc.Search(context.Background(), "   ")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("TrimmedQuery", func(t *testing.T) {
		repo.EXPECT().SearchProducts(gomock.Any(), "mug").Return([]*catalog.Product{{SKU: "A"}}, nil)

		got, err := svc.Search(context.Background(), " mug ")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("StoreError", func(t *testing.T) {
		repo.EXPECT().SearchProducts(gomock.Any(), "mug").Return(nil, errors.New("boom"))

		_, err := svc.Search(context.Background(), "mug")
		assert.ErrorIs(t, err, catalog.ErrLookupFailed)
	})
}

func TestService_Import(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	svc := catalog.NewService(repo)

	require.NoError(t, svc.Import(context.Background(), nil))

	err := svc.Import(context.Background(), []*catalog.Product{{Name: "No SKU"}})
	assert.Error(t, err)

	products := []*catalog.Product{{SKU: "A", Name: "Mug"}}
	repo.EXPECT().UpsertProducts(gomock.Any(), products).Return(nil)
	assert.NoError(t, svc.Import(context.Background(), products))
}

func TestService_Plan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	svc := catalog.NewService(repo)

	existing := &catalog.Product{SKU: "A", Name: "Mug", Price: 255}
	incoming := []*catalog.Product{
		{SKU: "A", Name: "Mug", Price: 295},
		{SKU: "B", Name: "Plate", Price: 450},
	}

	repo.EXPECT().GetProduct(gomock.Any(), "A").Return(existing, nil)
	repo.EXPECT().GetProduct(gomock.Any(), "B").Return(nil, catalog.ErrNotFound)

	plan, err := svc.Plan(context.Background(), incoming)
	require.NoError(t, err)

	assert.Equal(t, []*catalog.Product{incoming[1]}, plan.New)
	require.Len(t, plan.Conflicts, 1)
	assert.Same(t, incoming[0], plan.Conflicts[0].Incoming)
	assert.Same(t, existing, plan.Conflicts[0].Existing)

	t.Run("LookupFailure", func(t *testing.T) {
		repo.EXPECT().GetProduct(gomock.Any(), "A").Return(nil, errors.New("boom"))

		_, err := svc.Plan(context.Background(), incoming[:1])
		assert.ErrorIs(t, err, catalog.ErrLookupFailed)
	})
}

func TestMatches(t *testing.T) {
	p := &catalog.Product{SKU: "85123A", Name: "White Hanging Heart T-Light Holder", Category: "Home Decor"}

	assert.True(t, catalog.Matches(p, "heart"))
	assert.True(t, catalog.Matches(p, "85123a"))
	assert.True(t, catalog.Matches(p, "decor"))
	assert.False(t, catalog.Matches(p, "kitchen"))
}
