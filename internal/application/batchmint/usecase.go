package batchmint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"mintpress/internal/domain/collection"
	"mintpress/internal/domain/mintbatch"
	"mintpress/internal/domain/tree"
)

// BatchOutcome is the success payload of one pipeline run.
type BatchOutcome struct {
	CollectionID         string
	CollectionMint       string
	MetadataAccount      string
	MasterEditionAccount string
	TreeAddress          string
	Signatures           []string
	Minted               int
}

// UseCase runs the batch-mint pipeline end to end:
// Planning -> Uploading -> Estimating -> Allocating -> Registering ->
// Persisting -> Minting -> Persisting -> Done, with Failed absorbing.
// At most one run per payer mutates the ledger at a time; the payer lock
// is held from the funds check through the last mint.
type UseCase struct {
	Planner   Planner
	Uploader  Uploader
	Estimator Estimator
	Allocator Allocator
	Registrar Registrar
	Minter    Minter

	Collections collection.RepositoryPort
	Trees       tree.RepositoryPort
	Results     mintbatch.RepositoryPort
	Tx          TxRunner

	Notifier Notifier
	Now      func() time.Time

	mu         sync.Mutex
	payerLocks map[string]*sync.Mutex
}

// NewUseCase wires the pipeline from its parts.
func NewUseCase(
	planner Planner,
	uploader Uploader,
	estimator Estimator,
	allocator Allocator,
	registrar Registrar,
	minter Minter,
	collections collection.RepositoryPort,
	trees tree.RepositoryPort,
	results mintbatch.RepositoryPort,
	tx TxRunner,
	notifier Notifier,
) *UseCase {
	return &UseCase{
		Planner:     planner,
		Uploader:    uploader,
		Estimator:   estimator,
		Allocator:   allocator,
		Registrar:   registrar,
		Minter:      minter,
		Collections: collections,
		Trees:       trees,
		Results:     results,
		Tx:          tx,
		Notifier:    notifier,
		Now:         time.Now,
		payerLocks:  make(map[string]*sync.Mutex),
	}
}

// Execute runs one batch request under the given payer on behalf of the
// given user. createdBy is the authenticated caller; notifyEmail, when
// non-empty, receives a best-effort completion mail.
func (uc *UseCase) Execute(ctx context.Context, payer Payer, req mintbatch.BatchRequest, createdBy, notifyEmail string) (BatchOutcome, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		code := CodeInvalidRequest
		if errors.Is(err, mintbatch.ErrInvalidAddress) {
			code = CodeInvalidAddress
		}
		return BatchOutcome{}, stageErr(StagePlanning, code, err)
	}

	// Planning is pure; run it before anything with side effects.
	sizing, err := uc.Planner.Plan(req.Collection.ItemCount)
	if err != nil {
		return BatchOutcome{}, err
	}

	// Uploads happen outside the payer lock; they touch no ledger state.
	imageURL, collectionMetaURI, err := uc.Uploader.UploadCollection(ctx, req.Collection)
	if err != nil {
		return BatchOutcome{}, err
	}
	itemURIs, err := uc.Uploader.UploadItems(ctx, req.Items)
	if err != nil {
		return BatchOutcome{}, err
	}

	// One mutating run per payer at a time. The lock covers the funds
	// check through the last mint so a concurrent run cannot spend the
	// balance this run verified.
	unlock := uc.lockPayer(payer.Address)
	defer unlock()

	est, err := uc.Estimator.Estimate(ctx, sizing)
	if err != nil {
		return BatchOutcome{}, err
	}
	if err := uc.Estimator.VerifyFunds(ctx, payer, est); err != nil {
		return BatchOutcome{}, err
	}

	treeRes, err := uc.Allocator.Allocate(ctx, payer, sizing, est)
	if err != nil {
		return BatchOutcome{}, err
	}

	colIDs, err := uc.Registrar.Register(ctx, payer, req.Collection, collectionMetaURI)
	if err != nil {
		if se, ok := AsStageError(err); ok {
			se.TreeAddress = treeRes.TreeAddress
		}
		return BatchOutcome{}, err
	}

	// First persist phase: the collection and tree rows must exist before
	// minting so a mid-batch crash leaves reconcilable records.
	colRecord, err := uc.persistProvisioned(ctx, req, sizing, est, imageURL, collectionMetaURI, treeRes, colIDs, createdBy)
	if err != nil {
		if se, ok := AsStageError(err); ok {
			se.TreeAddress = treeRes.TreeAddress
			se.CollectionMint = colIDs.MintAddress
		}
		return BatchOutcome{}, err
	}

	signatures, mintErr := uc.Minter.MintAll(ctx, payer, treeRes.TreeAddress, colIDs,
		req.Items, itemURIs, req.Collection.MintAllTo)

	// Second persist phase: record whatever was confirmed, even on a
	// partial batch. Signatures already paid for must not be lost.
	if len(signatures) > 0 {
		if perr := uc.persistResult(ctx, colRecord.ID, signatures, createdBy); perr != nil {
			if mintErr == nil {
				perr.Signatures = append([]string(nil), signatures...)
				perr.TreeAddress = treeRes.TreeAddress
				perr.CollectionMint = colIDs.MintAddress
				return BatchOutcome{}, perr
			}
			log.Printf("[batchmint] WARN: partial result not persisted collectionId=%s minted=%d err=%v",
				colRecord.ID, len(signatures), perr)
		}
	}
	if mintErr != nil {
		return BatchOutcome{}, mintErr
	}

	outcome := BatchOutcome{
		CollectionID:         colRecord.ID,
		CollectionMint:       colIDs.MintAddress,
		MetadataAccount:      colIDs.MetadataAccount,
		MasterEditionAccount: colIDs.MasterEditionAccount,
		TreeAddress:          treeRes.TreeAddress,
		Signatures:           signatures,
		Minted:               len(signatures),
	}

	uc.notify(ctx, notifyEmail, req.Collection.Name, outcome)

	log.Printf("[batchmint] batch done collectionId=%s mint=%s tree=%s minted=%d elapsed=%s",
		outcome.CollectionID, outcome.CollectionMint, outcome.TreeAddress, outcome.Minted, time.Since(start))
	return outcome, nil
}

// ListMints returns the recorded results for a collection, newest first.
func (uc *UseCase) ListMints(ctx context.Context, collectionID string) (collection.Collection, []mintbatch.MintResult, error) {
	col, err := uc.Collections.GetByID(ctx, collectionID)
	if err != nil {
		return collection.Collection{}, nil, err
	}
	results, err := uc.Results.ListByCollectionID(ctx, collectionID)
	if err != nil {
		return collection.Collection{}, nil, err
	}
	return col, results, nil
}

func (uc *UseCase) persistProvisioned(
	ctx context.Context,
	req mintbatch.BatchRequest,
	sizing tree.Sizing,
	est Estimate,
	imageURL, metadataURI string,
	treeRes CreateTreeResult,
	colIDs CollectionLedgerIDs,
	createdBy string,
) (collection.Collection, error) {
	now := uc.now()

	colRecord, err := collection.New(
		uuid.NewString(),
		req.Collection.Name, req.Collection.Symbol,
		imageURL, metadataURI,
		colIDs.MintAddress, colIDs.MetadataAccount, colIDs.MasterEditionAccount,
		req.Collection.MintAllTo,
		createdBy, now,
	)
	if err != nil {
		return collection.Collection{}, stageErr(StagePersisting, CodePersistenceFailed, err)
	}

	treeRecord, err := tree.New(
		treeRes.TreeAddress, treeRes.AuthoritySecret, colRecord.ID,
		sizing, est.RequiredBalance, createdBy, now,
	)
	if err != nil {
		return collection.Collection{}, stageErr(StagePersisting, CodePersistenceFailed, err)
	}

	// collection 行と tree 行は対で書く。片方だけ残ると照合不能になる。
	txErr := uc.withinTx(ctx, func(ctx context.Context) error {
		if _, err := uc.Collections.Create(ctx, colRecord); err != nil {
			return fmt.Errorf("collection row: %w", err)
		}
		if _, err := uc.Trees.Create(ctx, treeRecord); err != nil {
			return fmt.Errorf("tree row: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return collection.Collection{}, stageErr(StagePersisting, CodePersistenceFailed, txErr)
	}

	log.Printf("[batchmint] provisioning persisted collectionId=%s tree=%s", colRecord.ID, treeRecord.Address)
	return colRecord, nil
}

func (uc *UseCase) persistResult(ctx context.Context, collectionID string, signatures []string, createdBy string) *StageError {
	result, err := mintbatch.NewMintResult(uuid.NewString(), collectionID, signatures, createdBy, uc.now())
	if err != nil {
		return stageErr(StagePersisting, CodePersistenceFailed, err)
	}
	if _, err := uc.Results.Create(ctx, result); err != nil {
		return stageErr(StagePersisting, CodePersistenceFailed,
			fmt.Errorf("mint result row: %w", err))
	}
	log.Printf("[batchmint] result persisted id=%s collectionId=%s signatures=%d",
		result.ID, collectionID, len(signatures))
	return nil
}

func (uc *UseCase) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if uc.Tx == nil {
		return fn(ctx)
	}
	return uc.Tx.WithinTx(ctx, fn)
}

func (uc *UseCase) notify(ctx context.Context, email, collectionName string, out BatchOutcome) {
	if uc.Notifier == nil || email == "" {
		return
	}
	if err := uc.Notifier.BatchMinted(ctx, email, collectionName, out.Minted, out.Signatures); err != nil {
		log.Printf("[batchmint] WARN: completion mail failed email=%q err=%v", email, err)
	}
}

func (uc *UseCase) lockPayer(address string) func() {
	uc.mu.Lock()
	l, ok := uc.payerLocks[address]
	if !ok {
		l = &sync.Mutex{}
		uc.payerLocks[address] = l
	}
	uc.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (uc *UseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
