package services

// ServiceContainer bundles the application services handed to the HTTP layer.
type ServiceContainer struct {
	Accounts AccountSvcFacade
	Posting  PostingSvcFacade
	Bills    BillSvcFacade
}
