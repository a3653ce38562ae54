package domain

// domain package contains the Domain Models and Interfaces for the OPS application.
//
// `domain/ops` package exposes root object for the OPS application.
// Entrypoints of applications should instantiate the OPS object and use it to interact with the domain.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/budgetlineitem.go` contains the `BudgetLineItem` entity and its lifecycle.
// Functions in this package are pure: they decide, and the database layer persists what they decide.
//
// `domain/ENTITY` directory contains the "physical" representation of the domain entities in the RDB.
// `domain/ENTITY/db/interface.go` exposes the client interface to handle the domain entity in DB,
// `domain/ENTITY/db/postgres` implements it and `domain/ENTITY/db/mock` mocks it for tests.
//
// # Entities
//
// Core entities in the domain are:
//
// - `CAN`: Common Accounting Number. An account with budgets per fiscal year.
//
// - `Agreement`: contracts, grants, IAAs and direct obligations. Agreements spend money of CANs
// through Budget Line Items.
//
// - `BudgetLineItem`: an amount of money from a CAN needed by an agreement on a date.
// It goes DRAFT -> PLANNED -> IN_EXECUTION -> OBLIGATED. Moving forward and changing money of
// committed items need approvals; they are requested as Change Requests.
//
// - `ChangeRequest`: a requested change waiting for approval. A Workflow Instance reviews it.
//
// - `Workflow`: approval steps. Reviewers decide on each step; once all steps approve,
// the change request is applied.
//
// - `ProcurementTracker`: steps of a procurement from acquisition planning to award.
// On award, budget line items in execution are obligated.
//
// And others:
//
// - `OpsEvent` and `OpsDBHistory`: every operation is recorded as an event,
// and every row change caused by the operation is recorded as a history.
//
// - `CANHistory`: human readable history of CANs. The "can history projection loop" derives them
// from events.
//
// - `Notification`: messages to users, sent when change requests need review or are decided.
//
// - `loop`: Manages recurring tasks. This defines constants for each loop.
// Implementation of the loop is in `cmd/ops_loops/tasks/` directory.
