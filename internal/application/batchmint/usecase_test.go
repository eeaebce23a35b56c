package batchmint

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintpress/internal/domain/collection"
	"mintpress/internal/domain/mintbatch"
	"mintpress/internal/domain/tree"
)

// 32 バイト base58 の実在アドレス（system / noop program id）
const (
	testAddrA = "11111111111111111111111111111111"
	testAddrB = "noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"
)

type fakeCollections struct {
	mu   sync.Mutex
	rows map[string]collection.Collection
	err  error
}

func (f *fakeCollections) Create(ctx context.Context, c collection.Collection) (collection.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return collection.Collection{}, f.err
	}
	if f.rows == nil {
		f.rows = make(map[string]collection.Collection)
	}
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeCollections) GetByID(ctx context.Context, id string) (collection.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return collection.Collection{}, collection.ErrNotFound
	}
	return c, nil
}

type fakeTrees struct {
	mu   sync.Mutex
	rows []tree.Tree
}

func (f *fakeTrees) Create(ctx context.Context, t tree.Tree) (tree.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, t)
	return t, nil
}

func (f *fakeTrees) GetByAddress(ctx context.Context, address string) (tree.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.Address == address {
			return t, nil
		}
	}
	return tree.Tree{}, tree.ErrNotFound
}

func (f *fakeTrees) ListByCollectionID(ctx context.Context, collectionID string) ([]tree.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tree.Tree
	for _, t := range f.rows {
		if t.CollectionID == collectionID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeResults struct {
	mu   sync.Mutex
	rows []mintbatch.MintResult
	err  error
}

func (f *fakeResults) Create(ctx context.Context, m mintbatch.MintResult) (mintbatch.MintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return mintbatch.MintResult{}, f.err
	}
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *fakeResults) GetByID(ctx context.Context, id string) (mintbatch.MintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return mintbatch.MintResult{}, mintbatch.ErrNotFound
}

func (f *fakeResults) ListByCollectionID(ctx context.Context, collectionID string) ([]mintbatch.MintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mintbatch.MintResult
	for _, m := range f.rows {
		if m.CollectionID == collectionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	calls  int
	emails []string
	err    error
}

func (f *fakeNotifier) BatchMinted(ctx context.Context, recipientEmail, collectionName string, minted int, signatures []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.emails = append(f.emails, recipientEmail)
	return f.err
}

type fakeTxRunner struct {
	mu   sync.Mutex
	runs int
}

func (f *fakeTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	return fn(ctx)
}

type ucFixture struct {
	uc          *UseCase
	ledger      *fakeLedger
	blobs       *fakeBlobs
	reconcile   *fakeReconcile
	collections *fakeCollections
	trees       *fakeTrees
	results     *fakeResults
	tx          *fakeTxRunner
	notifier    *fakeNotifier
}

func newFixture(balance, rent uint64) *ucFixture {
	f := &ucFixture{
		ledger:      newFakeLedger(balance, rent),
		blobs:       &fakeBlobs{},
		reconcile:   &fakeReconcile{},
		collections: &fakeCollections{},
		trees:       &fakeTrees{},
		results:     &fakeResults{},
		tx:          &fakeTxRunner{},
		notifier:    &fakeNotifier{},
	}
	f.uc = NewUseCase(
		Planner{Policy: tree.DefaultPolicy()},
		Uploader{Blobs: f.blobs, Concurrency: 2},
		Estimator{Ledger: f.ledger},
		Allocator{Ledger: f.ledger, Reconcile: f.reconcile},
		Registrar{Ledger: f.ledger, Reconcile: f.reconcile},
		Minter{Ledger: f.ledger},
		f.collections,
		f.trees,
		f.results,
		f.tx,
		f.notifier,
	)
	f.uc.Now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func batchRequest(n int) mintbatch.BatchRequest {
	items := make([]mintbatch.ItemInput, n)
	for i := range items {
		items[i] = mintbatch.ItemInput{
			Name:     "Item",
			Symbol:   "ITM",
			ImageRef: "https://example.com/img.png",
		}
	}
	return mintbatch.BatchRequest{
		Collection: mintbatch.CollectionInput{
			Name:      "Spring Drop",
			Symbol:    "SPR",
			ItemCount: n,
			MintAllTo: testAddrA,
			ImageRef:  "https://example.com/cover.png",
		},
		Items: items,
	}
}

func TestExecuteHappyPath(t *testing.T) {
	f := newFixture(1_000_000, 500_000)

	req := batchRequest(5)
	override := testAddrB
	req.Items[4].Recipient = &override

	out, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, req, "user-1", "user@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, out.CollectionID)
	assert.Equal(t, "Mint1111", out.CollectionMint)
	assert.Equal(t, "Tree1111", out.TreeAddress)
	assert.Equal(t, 5, out.Minted)
	assert.Equal(t, []string{"sig-0", "sig-1", "sig-2", "sig-3", "sig-4"}, out.Signatures)

	// recipient の解決: 4 件はデフォルト、最後だけ override
	assert.Equal(t, []string{testAddrA, testAddrA, testAddrA, testAddrA, testAddrB}, f.ledger.mintRecipients)

	// 永続化: collection 1 行 + tree 1 行 + result 1 行
	assert.Len(t, f.collections.rows, 1)
	require.Len(t, f.trees.rows, 1)
	assert.Equal(t, out.CollectionID, f.trees.rows[0].CollectionID)
	assert.Equal(t, uint32(3), f.trees.rows[0].Depth)
	require.Len(t, f.results.rows, 1)
	assert.Equal(t, out.Signatures, f.results.rows[0].Signatures)

	// collection 行と tree 行は 1 トランザクションで書かれる
	assert.Equal(t, 1, f.tx.runs)

	// reconcile log: allocate + register の 2 intent、両方 confirm 済み
	assert.Equal(t, []Stage{StageAllocating, StageRegistering}, f.reconcile.intents)
	assert.Len(t, f.reconcile.confirms, 2)

	// 完了メール
	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, []string{"user@example.com"}, f.notifier.emails)
}

func TestExecuteInvalidAddress(t *testing.T) {
	f := newFixture(1_000_000, 1)

	req := batchRequest(2)
	req.Collection.MintAllTo = "garbage"

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, req, "user-1", "")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, StagePlanning, se.Stage)
	assert.Equal(t, CodeInvalidAddress, se.Code)
	assert.Equal(t, 0, f.ledger.createTreeCalls)
	assert.Equal(t, 0, f.blobs.count)
}

func TestExecuteCountMismatch(t *testing.T) {
	f := newFixture(1_000_000, 1)

	req := batchRequest(2)
	req.Collection.ItemCount = 9

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, req, "user-1", "")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, se.Code)
}

func TestExecuteInsufficientFunds(t *testing.T) {
	f := newFixture(100, 500_000)

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(3), "user-1", "")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInsufficientFunds, se.Code)

	// 資金不足ではレジャー変異もDB行も一切発生しない
	assert.Equal(t, 0, f.ledger.createTreeCalls)
	assert.Equal(t, 0, f.ledger.createColCalls)
	assert.Empty(t, f.collections.rows)
	assert.Empty(t, f.trees.rows)
}

func TestExecutePartialMintPersistsPrefix(t *testing.T) {
	f := newFixture(1_000_000, 500_000)
	f.ledger.failMintAt = 3

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(5), "user-1", "user@example.com")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMintFailed, se.Code)
	assert.Equal(t, 3, se.Index)
	assert.Equal(t, []string{"sig-0", "sig-1", "sig-2"}, se.Signatures)
	assert.Equal(t, "Tree1111", se.TreeAddress)
	assert.Equal(t, "Mint1111", se.CollectionMint)

	// 部分バッチでも確定分の signature は必ず永続化される
	require.Len(t, f.results.rows, 1)
	assert.Equal(t, []string{"sig-0", "sig-1", "sig-2"}, f.results.rows[0].Signatures)

	// 失敗バッチでは完了メールなし
	assert.Equal(t, 0, f.notifier.calls)
}

func TestExecutePersistFailureAfterSuccessfulMint(t *testing.T) {
	f := newFixture(1_000_000, 500_000)
	f.results.err = errors.New("db down")

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(2), "user-1", "")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, StagePersisting, se.Stage)
	assert.Equal(t, CodePersistenceFailed, se.Code)
	// クライアントが照合できるよう、確定済み signature を必ず添える
	assert.Equal(t, []string{"sig-0", "sig-1"}, se.Signatures)
	assert.Equal(t, "Tree1111", se.TreeAddress)
}

func TestExecuteProvisioningPersistFailure(t *testing.T) {
	f := newFixture(1_000_000, 500_000)
	f.collections.err = errors.New("db down")

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(2), "user-1", "")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, StagePersisting, se.Stage)
	assert.Equal(t, CodePersistenceFailed, se.Code)
	assert.Equal(t, "Tree1111", se.TreeAddress)
	assert.Equal(t, "Mint1111", se.CollectionMint)

	// トランザクション失敗時は tree 行も残らず、mint へは進まない
	assert.Empty(t, f.trees.rows)
	assert.Empty(t, f.ledger.mintRecipients)
}

func TestExecuteRegistrationFailureCarriesTree(t *testing.T) {
	f := newFixture(1_000_000, 500_000)
	f.ledger.createColErr = errors.New("blockhash expired")

	_, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(2), "user-1", "")
	se, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CodeRegistrationFailed, se.Code)
	// 既に確保済みの tree は照合用にエラーへ載せる
	assert.Equal(t, "Tree1111", se.TreeAddress)
}

func TestExecuteNotifierFailureIsSwallowed(t *testing.T) {
	f := newFixture(1_000_000, 500_000)
	f.notifier.err = errors.New("smtp refused")

	out, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(1), "user-1", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Minted)
}

func TestListMints(t *testing.T) {
	f := newFixture(1_000_000, 500_000)

	out, err := f.uc.Execute(context.Background(), Payer{Address: "payer"}, batchRequest(2), "user-1", "")
	require.NoError(t, err)

	col, results, err := f.uc.ListMints(context.Background(), out.CollectionID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Drop", col.Name)
	require.Len(t, results, 1)
	assert.Equal(t, out.Signatures, results[0].Signatures)

	_, _, err = f.uc.ListMints(context.Background(), "missing-id")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}
