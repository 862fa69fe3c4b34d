package repositories

// RepositoryProvider bundles all repository facades for injection into services.
type RepositoryProvider struct {
	AccountRepo AccountRepositoryFacade
	EntryRepo   EntryRepositoryFacade
	BillRepo    BillRepositoryFacade
}
