package persistence

import (
	"context"
	"fmt"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// memoryState holds all rows as values so a snapshot is a plain map copy.
type memoryState struct {
	recipients    map[uint64]entity.Recipient
	contributions map[uint64]entity.Contribution
	fundables     map[uint64]entity.Fundable
	wallets       map[uint64]entity.Wallet
	lines         map[uint64]entity.LedgerLine

	nextContributionID uint64
	nextWalletID       uint64
	nextLineID         uint64
}

func newMemoryState() *memoryState {
	return &memoryState{
		recipients:    make(map[uint64]entity.Recipient),
		contributions: make(map[uint64]entity.Contribution),
		fundables:     make(map[uint64]entity.Fundable),
		wallets:       make(map[uint64]entity.Wallet),
		lines:         make(map[uint64]entity.LedgerLine),
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		recipients:         make(map[uint64]entity.Recipient, len(s.recipients)),
		contributions:      make(map[uint64]entity.Contribution, len(s.contributions)),
		fundables:          make(map[uint64]entity.Fundable, len(s.fundables)),
		wallets:            make(map[uint64]entity.Wallet, len(s.wallets)),
		lines:              make(map[uint64]entity.LedgerLine, len(s.lines)),
		nextContributionID: s.nextContributionID,
		nextWalletID:       s.nextWalletID,
		nextLineID:         s.nextLineID,
	}
	for k, v := range s.recipients {
		c.recipients[k] = v
	}
	for k, v := range s.contributions {
		c.contributions[k] = v
	}
	for k, v := range s.fundables {
		c.fundables[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	return c
}

// MemoryUnitOfWork is an in-memory UnitOfWork for usecase tests. Begin takes
// a snapshot and Rollback restores it, so transactional semantics hold
// without a database. Not safe for concurrent use.
type MemoryUnitOfWork struct {
	state    *memoryState
	snapshot *memoryState
	tp       coreport.TimeProvider

	// Error injection points.
	BeginErr  error
	CommitErr error
}

// NewMemoryUnitOfWork creates an empty in-memory store.
func NewMemoryUnitOfWork(tp coreport.TimeProvider) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{state: newMemoryState(), tp: tp}
}

// Begin snapshots the state for a later rollback.
func (u *MemoryUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if u.BeginErr != nil {
		return ctx, u.BeginErr
	}
	u.snapshot = u.state.clone()
	return ctx, nil
}

// Commit discards the snapshot, keeping all changes.
func (u *MemoryUnitOfWork) Commit(ctx context.Context) error {
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.snapshot = nil
	return nil
}

// Rollback restores the snapshot. Rolling back with no open transaction is
// a no-op, matching the production contract.
func (u *MemoryUnitOfWork) Rollback(ctx context.Context) error {
	if u.snapshot != nil {
		u.state = u.snapshot
		u.snapshot = nil
	}
	return nil
}

// Recipients returns the recipient repository.
func (u *MemoryUnitOfWork) Recipients(ctx context.Context) persistence.RecipientRepository {
	return &memoryRecipientRepo{u: u}
}

// Contributions returns the contribution repository.
func (u *MemoryUnitOfWork) Contributions(ctx context.Context) persistence.ContributionRepository {
	return &memoryContributionRepo{u: u}
}

// Fundables returns the fundable repository.
func (u *MemoryUnitOfWork) Fundables(ctx context.Context) persistence.FundableRepository {
	return &memoryFundableRepo{u: u}
}

// Wallets returns the wallet repository.
func (u *MemoryUnitOfWork) Wallets(ctx context.Context) persistence.WalletRepository {
	return &memoryWalletRepo{u: u}
}

// Seed helpers.

// AddRecipient stores a recipient row.
func (u *MemoryUnitOfWork) AddRecipient(r *entity.Recipient) {
	u.state.recipients[r.ID] = *r
}

// AddFundable stores a fundable row.
func (u *MemoryUnitOfWork) AddFundable(f *entity.Fundable) {
	u.state.fundables[f.ID] = *f
}

// AddContribution stores a contribution row, assigning an id when missing.
func (u *MemoryUnitOfWork) AddContribution(c *entity.Contribution) {
	if c.ID == 0 {
		u.state.nextContributionID++
		c.ID = u.state.nextContributionID
	}
	u.state.contributions[c.ID] = *c
}

// Inspection helpers.

// Recipient returns a copy of the stored recipient row.
func (u *MemoryUnitOfWork) Recipient(id uint64) (entity.Recipient, bool) {
	r, ok := u.state.recipients[id]
	return r, ok
}

// Contribution returns a copy of the stored contribution row.
func (u *MemoryUnitOfWork) Contribution(id uint64) (entity.Contribution, bool) {
	c, ok := u.state.contributions[id]
	return c, ok
}

// Fundable returns a copy of the stored fundable row.
func (u *MemoryUnitOfWork) Fundable(id uint64) (entity.Fundable, bool) {
	f, ok := u.state.fundables[id]
	return f, ok
}

// WalletFor returns a copy of the recipient's wallet row.
func (u *MemoryUnitOfWork) WalletFor(recipientID uint64) (entity.Wallet, bool) {
	for _, w := range u.state.wallets {
		if w.RecipientID == recipientID {
			return w, true
		}
	}
	return entity.Wallet{}, false
}

// Lines returns copies of all ledger lines in id order.
func (u *MemoryUnitOfWork) Lines() []entity.LedgerLine {
	lines := make([]entity.LedgerLine, 0, len(u.state.lines))
	for id := uint64(1); id <= u.state.nextLineID; id++ {
		if l, ok := u.state.lines[id]; ok {
			lines = append(lines, l)
		}
	}
	return lines
}

type memoryRecipientRepo struct {
	u *MemoryUnitOfWork
}

func (r *memoryRecipientRepo) GetByID(ctx context.Context, id uint64) (*entity.Recipient, error) {
	v, ok := r.u.state.recipients[id]
	if !ok {
		return nil, errs.ErrRecipientNotFound
	}
	cp := v
	return &cp, nil
}

func (r *memoryRecipientRepo) GetForUpdate(ctx context.Context, id uint64) (*entity.Recipient, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryRecipientRepo) Create(ctx context.Context, recipient *entity.Recipient) error {
	r.u.state.recipients[recipient.ID] = *recipient
	return nil
}

func (r *memoryRecipientRepo) CreditReceived(ctx context.Context, id uint64, netCents int64) (*entity.Recipient, error) {
	v, ok := r.u.state.recipients[id]
	if !ok {
		return nil, errs.ErrRecipientNotFound
	}
	v.SetReceivedCents(v.ReceivedCents() + netCents)
	v.ContributionsReceivedCount++
	v.UpdatedAt = r.u.tp.Now()
	r.u.state.recipients[id] = v
	cp := v
	return &cp, nil
}

func (r *memoryRecipientRepo) DebitReceived(ctx context.Context, id uint64, cents int64) (*entity.Recipient, error) {
	v, ok := r.u.state.recipients[id]
	if !ok {
		return nil, errs.ErrRecipientNotFound
	}
	if v.ReceivedCents() < cents {
		return nil, errs.ErrInsufficientBalance
	}
	v.SetReceivedCents(v.ReceivedCents() - cents)
	v.UpdatedAt = r.u.tp.Now()
	r.u.state.recipients[id] = v
	cp := v
	return &cp, nil
}

func (r *memoryRecipientRepo) RefundReceived(ctx context.Context, id uint64, cents int64) (*entity.Recipient, error) {
	v, ok := r.u.state.recipients[id]
	if !ok {
		return nil, errs.ErrRecipientNotFound
	}
	v.SetReceivedCents(v.ReceivedCents() + cents)
	v.UpdatedAt = r.u.tp.Now()
	r.u.state.recipients[id] = v
	cp := v
	return &cp, nil
}

type memoryContributionRepo struct {
	u *MemoryUnitOfWork
}

func (r *memoryContributionRepo) Create(ctx context.Context, contribution *entity.Contribution) error {
	if contribution.ExternalTransactionID != "" {
		for _, existing := range r.u.state.contributions {
			if existing.Provider == contribution.Provider &&
				existing.ExternalTransactionID == contribution.ExternalTransactionID {
				return errs.ErrDuplicateContribution
			}
		}
	}
	r.u.state.nextContributionID++
	contribution.ID = r.u.state.nextContributionID
	r.u.state.contributions[contribution.ID] = *contribution
	return nil
}

func (r *memoryContributionRepo) GetByID(ctx context.Context, id uint64) (*entity.Contribution, error) {
	v, ok := r.u.state.contributions[id]
	if !ok {
		return nil, errs.ErrContributionNotFound
	}
	cp := v
	return &cp, nil
}

func (r *memoryContributionRepo) GetPendingByRef(ctx context.Context, ref entity.ProviderRef) (*entity.Contribution, error) {
	for _, v := range r.u.state.contributions {
		if v.Provider == ref.Provider &&
			v.ExternalTransactionID == ref.ExternalTransactionID &&
			v.Status == entity.ContributionPending {
			cp := v
			return &cp, nil
		}
	}
	return nil, errs.ErrContributionNotFound
}

func (r *memoryContributionRepo) Update(ctx context.Context, contribution *entity.Contribution) error {
	if _, ok := r.u.state.contributions[contribution.ID]; !ok {
		return errs.ErrContributionNotFound
	}
	r.u.state.contributions[contribution.ID] = *contribution
	return nil
}

type memoryFundableRepo struct {
	u *MemoryUnitOfWork
}

func (r *memoryFundableRepo) GetByID(ctx context.Context, id uint64) (*entity.Fundable, error) {
	v, ok := r.u.state.fundables[id]
	if !ok {
		return nil, errs.ErrFundableNotFound
	}
	cp := v
	return &cp, nil
}

func (r *memoryFundableRepo) GetForUpdate(ctx context.Context, id uint64) (*entity.Fundable, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryFundableRepo) Create(ctx context.Context, fundable *entity.Fundable) error {
	r.u.state.fundables[fundable.ID] = *fundable
	return nil
}

func (r *memoryFundableRepo) Update(ctx context.Context, fundable *entity.Fundable) error {
	if _, ok := r.u.state.fundables[fundable.ID]; !ok {
		return errs.ErrFundableNotFound
	}
	r.u.state.fundables[fundable.ID] = *fundable
	return nil
}

type memoryWalletRepo struct {
	u *MemoryUnitOfWork
}

func (r *memoryWalletRepo) GetOrCreate(ctx context.Context, recipientID uint64) (*entity.Wallet, error) {
	for _, w := range r.u.state.wallets {
		if w.RecipientID == recipientID {
			cp := w
			return &cp, nil
		}
	}
	now := r.u.tp.Now()
	r.u.state.nextWalletID++
	w := entity.Wallet{
		ID:          r.u.state.nextWalletID,
		RecipientID: recipientID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.u.state.wallets[w.ID] = w
	cp := w
	return &cp, nil
}

func (r *memoryWalletRepo) Update(ctx context.Context, wallet *entity.Wallet) error {
	if _, ok := r.u.state.wallets[wallet.ID]; !ok {
		return errs.ErrWalletNotFound
	}
	r.u.state.wallets[wallet.ID] = *wallet
	return nil
}

func (r *memoryWalletRepo) AppendLine(ctx context.Context, line *entity.LedgerLine) error {
	r.u.state.nextLineID++
	line.ID = r.u.state.nextLineID
	r.u.state.lines[line.ID] = *line
	return nil
}

func (r *memoryWalletRepo) UpdateLineStatus(ctx context.Context, lineID uint64, status entity.LedgerLineStatus, externalRef string) error {
	l, ok := r.u.state.lines[lineID]
	if !ok {
		return fmt.Errorf("%w: line %d", errs.ErrWalletNotFound, lineID)
	}
	l.Status = status
	if externalRef != "" {
		l.ExternalReference = externalRef
	}
	r.u.state.lines[lineID] = l
	return nil
}

func (r *memoryWalletRepo) SumWalletLines(ctx context.Context, walletID uint64) (int64, error) {
	var sum int64
	for _, l := range r.u.state.lines {
		if l.WalletID == walletID && l.Type.AffectsWalletBalance() && l.Status == entity.LineCompleted {
			sum += l.AmountCents
		}
	}
	return sum, nil
}

// MemoryActivityRepository records activity entries in memory.
type MemoryActivityRepository struct {
	Entries []persistence.ActivityEntry
	Err     error
}

// Record appends the entry, or fails with the injected error.
func (r *MemoryActivityRepository) Record(ctx context.Context, entry *persistence.ActivityEntry) error {
	if r.Err != nil {
		return r.Err
	}
	r.Entries = append(r.Entries, *entry)
	return nil
}

var (
	_ persistence.UnitOfWork         = (*MemoryUnitOfWork)(nil)
	_ persistence.ActivityRepository = (*MemoryActivityRepository)(nil)
)
