package services

import (
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/pkg/config"
)

// NewServiceContainer wires the application services in dependency order.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Accounts = NewAccountService(repos.AccountRepo)
	container.Posting = NewPostingService(repos.EntryRepo, container.Accounts)

	translator := NewBillTranslator(cfg.Posting)
	container.Bills = NewBillService(repos.BillRepo, translator, container.Posting)

	return container
}
