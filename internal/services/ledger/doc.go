/*
Package ledger owns the wallet balance invariants.

Every balance mutation is a relative delta handed to the store as a
single conditional update; the service never reads a balance, computes a
new value in application code and writes it back. The store-level guard
(balance + delta >= 0) is what keeps the non-negativity invariant under
concurrent callers and across processes.

Usage:

	svc := ledger.NewService(repo, cacheSvc, authz, ledger.Config{}, nil)

	// Lazily create a wallet with the starting balance
	w, err := svc.GetOrCreate(ctx, userID)

	// Atomically debit; fails with errors.ErrInsufficientFunds when the
	// result would be negative, leaving the balance untouched
	w, err = svc.ApplyDelta(ctx, userID, amount.Neg())

	// Once per 24h
	grant, err := svc.GrantDailyBonus(ctx, userID)

Administrative overwrites (SetBalance, DistributeBonus, ListWallets) are
gated on the injected authorization checker.
*/
package ledger
