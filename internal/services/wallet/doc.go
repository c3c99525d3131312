/*
Package wallet manages user wallets and their ledger.

Every balance change is written together with a WalletEntry in one
database transaction. Other services that move money inside their own
transaction use the ledger helpers on wallets locked with LockWallets.
Money that crosses the payment gateway is posted with CreditExternal or
DebitExternal, which stamp the gateway id on the entry; a wallet never
records the same gateway id twice, so a replayed charge is not credited
again.

Usage:

	metrics := wallet.NewCounterMetrics(logger)
	svc := wallet.NewService(store, cache, gateway, wallet.Config{}, logger, metrics)

	w, err := svc.Deposit(ctx, userID, amount, "top up", "")
	entries, total, err := svc.History(ctx, userID, 20, 0)
	w, err = svc.Payout(ctx, userID, amount, idempotencyKey)

Reads go through the cache when one is configured; every mutation
invalidates the affected wallets after commit. A read only writes its copy
back if no invalidation happened since it started.
*/
package wallet
