package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdom "mintpress/internal/domain/collection"
	mdom "mintpress/internal/domain/mintbatch"
	tdom "mintpress/internal/domain/tree"
)

var testCreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*CollectionRepositoryPG, *TreeRepositoryPG, *MintResultRepositoryPG, sqlmock.Sqlmock) {
	t.Helper()
	dbc, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })
	return NewCollectionRepositoryPG(dbc), NewTreeRepositoryPG(dbc), NewMintResultRepositoryPG(dbc), mock
}

func collectionColumns() []string {
	return []string{
		"id", "name", "symbol", "image_uri", "metadata_uri",
		"mint_address", "metadata_account", "master_edition_account",
		"creator_address", "created_by", "created_at",
	}
}

func TestCollectionCreate(t *testing.T) {
	repo, _, _, mock := newMock(t)

	rows := sqlmock.NewRows(collectionColumns()).AddRow(
		"col-1", "Spring Drop", "SPR", "https://img", "https://meta",
		"Mint1111", "Meta1111", "Edition1111",
		"Creator1111", "user-1", testCreatedAt,
	)
	mock.ExpectQuery("INSERT INTO collections").
		WithArgs("col-1", "Spring Drop", "SPR", "https://img", "https://meta",
			"Mint1111", "Meta1111", "Edition1111", "Creator1111", "user-1", testCreatedAt).
		WillReturnRows(rows)

	in := cdom.Collection{
		ID: "col-1", Name: "Spring Drop", Symbol: "SPR",
		ImageURI: "https://img", MetadataURI: "https://meta",
		MintAddress: "Mint1111", MetadataAccount: "Meta1111", MasterEditionAccount: "Edition1111",
		CreatorAddress: "Creator1111", CreatedBy: "user-1", CreatedAt: testCreatedAt,
	}
	out, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionCreateConflict(t *testing.T) {
	repo, _, _, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO collections").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), cdom.Collection{ID: "col-1"})
	assert.ErrorIs(t, err, cdom.ErrConflict)
}

func TestCollectionGetByIDNotFound(t *testing.T) {
	repo, _, _, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM collections").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(collectionColumns()))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, cdom.ErrNotFound)
}

func TestCollectionGetByIDNullURIs(t *testing.T) {
	repo, _, _, mock := newMock(t)

	rows := sqlmock.NewRows(collectionColumns()).AddRow(
		"col-1", "Spring Drop", "SPR", nil, nil,
		"Mint1111", "Meta1111", "Edition1111",
		"Creator1111", "user-1", testCreatedAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM collections").
		WithArgs("col-1").
		WillReturnRows(rows)

	out, err := repo.GetByID(context.Background(), " col-1 ")
	require.NoError(t, err)
	assert.Empty(t, out.ImageURI)
	assert.Empty(t, out.MetadataURI)
}

func treeColumns() []string {
	return []string{
		"address", "authority_secret", "collection_id",
		"depth", "buffer_size", "canopy_depth", "cost_lamports",
		"created_by", "created_at",
	}
}

func TestTreeCreate(t *testing.T) {
	_, repo, _, mock := newMock(t)

	rows := sqlmock.NewRows(treeColumns()).AddRow(
		"Tree1111", "c2VjcmV0", "col-1",
		14, 8, 9, 37176,
		"user-1", testCreatedAt,
	)
	mock.ExpectQuery("INSERT INTO trees").
		WithArgs("Tree1111", "c2VjcmV0", "col-1",
			uint32(14), uint32(8), uint32(9), uint64(37176), "user-1", testCreatedAt).
		WillReturnRows(rows)

	out, err := repo.Create(context.Background(), tdom.Tree{
		Address: "Tree1111", AuthoritySecret: "c2VjcmV0", CollectionID: "col-1",
		Depth: 14, BufferSize: 8, CanopyDepth: 9, CostLamports: 37176,
		CreatedBy: "user-1", CreatedAt: testCreatedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(14), out.Depth)
	assert.Equal(t, uint64(37176), out.CostLamports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreeListByCollectionID(t *testing.T) {
	_, repo, _, mock := newMock(t)

	rows := sqlmock.NewRows(treeColumns()).
		AddRow("Tree2222", "a2V5Mg==", "col-1", 14, 8, 9, 100, "user-1", testCreatedAt.Add(time.Hour)).
		AddRow("Tree1111", "a2V5MQ==", "col-1", 3, 8, 2, 50, "user-1", testCreatedAt)
	mock.ExpectQuery("SELECT (.+) FROM trees").
		WithArgs("col-1").
		WillReturnRows(rows)

	out, err := repo.ListByCollectionID(context.Background(), "col-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Tree2222", out[0].Address)
	assert.Equal(t, "Tree1111", out[1].Address)
}

func TestTreeGetByAddressNotFound(t *testing.T) {
	_, repo, _, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM trees").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(treeColumns()))

	_, err := repo.GetByAddress(context.Background(), "missing")
	assert.ErrorIs(t, err, tdom.ErrNotFound)
}

func mintResultColumns() []string {
	return []string{"id", "collection_id", "signatures", "created_by", "created_at"}
}

func TestMintResultCreate(t *testing.T) {
	_, _, repo, mock := newMock(t)

	rows := sqlmock.NewRows(mintResultColumns()).AddRow(
		"res-1", "col-1", "{sig-0,sig-1,sig-2}", "user-1", testCreatedAt,
	)
	mock.ExpectQuery("INSERT INTO mint_results").
		WithArgs("res-1", "col-1", pq.Array([]string{"sig-0", "sig-1", "sig-2"}), "user-1", testCreatedAt).
		WillReturnRows(rows)

	out, err := repo.Create(context.Background(), mdom.MintResult{
		ID: "res-1", CollectionID: "col-1",
		Signatures: []string{"sig-0", "sig-1", "sig-2"},
		CreatedBy:  "user-1", CreatedAt: testCreatedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sig-0", "sig-1", "sig-2"}, out.Signatures)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMintResultListByCollectionID(t *testing.T) {
	_, _, repo, mock := newMock(t)

	rows := sqlmock.NewRows(mintResultColumns()).
		AddRow("res-2", "col-1", "{sig-9}", "user-1", testCreatedAt.Add(time.Hour)).
		AddRow("res-1", "col-1", "{sig-0,sig-1}", "user-1", testCreatedAt)
	mock.ExpectQuery("SELECT (.+) FROM mint_results").
		WithArgs("col-1").
		WillReturnRows(rows)

	out, err := repo.ListByCollectionID(context.Background(), "col-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"sig-9"}, out[0].Signatures)
	assert.Equal(t, []string{"sig-0", "sig-1"}, out[1].Signatures)
}

func TestMintResultGetByIDNotFound(t *testing.T) {
	_, _, repo, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM mint_results").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(mintResultColumns()))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, mdom.ErrNotFound)
}
