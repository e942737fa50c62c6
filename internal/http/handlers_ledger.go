package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// crudRoutes binds one collection's store methods to the REST verbs.
type crudRoutes[T any] struct {
	list   func(r *http.Request) []T
	create func(ctx context.Context, v T) (T, error)
	update func(ctx context.Context, v T) error
	remove func(ctx context.Context, id string) error
	setID  func(v *T, id string)
	clean  func(v *T)
}

func registerCRUD[T any](mux *http.ServeMux, base string, c crudRoutes[T]) {
	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Data(c.list(r)).Write(w)
	})

	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			writeError(w, r, err)
			return
		}
		c.clean(&v)
		created, err := c.create(r.Context(), v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).Data(created).Write(w)
	})

	mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			writeError(w, r, err)
			return
		}
		c.setID(&v, r.PathValue("id"))
		c.clean(&v)
		if err := c.update(r.Context(), v); err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Data(v).Write(w)
	})

	mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := c.remove(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
	})
}

// writeError logs unexpected failures; expected ones are already logged by
// the store.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := FromError(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	resp.Write(w)
}

func (s *Server) transactionRoutes() crudRoutes[core.Transaction] {
	return crudRoutes[core.Transaction]{
		list: func(r *http.Request) []core.Transaction {
			return report.FilterTransactions(s.ledger.Transactions(), ParseFilter(r.URL.Query()))
		},
		create: s.ledger.AddTransaction,
		update: s.ledger.UpdateTransaction,
		remove: s.ledger.DeleteTransaction,
		setID:  func(t *core.Transaction, id string) { t.ID = id },
		clean: func(t *core.Transaction) {
			t.Description = sanitizeInput(t.Description)
			t.Category = sanitizeInput(t.Category)
		},
	}
}

func (s *Server) categoryRoutes() crudRoutes[core.Category] {
	return crudRoutes[core.Category]{
		list:   func(*http.Request) []core.Category { return s.ledger.Categories() },
		create: s.ledger.AddCategory,
		update: s.ledger.UpdateCategory,
		remove: s.ledger.DeleteCategory,
		setID:  func(c *core.Category, id string) { c.ID = id },
		clean: func(c *core.Category) {
			c.Name = sanitizeInput(c.Name)
			c.Color = sanitizeInput(c.Color)
			c.Icon = sanitizeInput(c.Icon)
		},
	}
}

func (s *Server) budgetRoutes() crudRoutes[core.Budget] {
	return crudRoutes[core.Budget]{
		list:   func(*http.Request) []core.Budget { return s.ledger.Budgets() },
		create: s.ledger.AddBudget,
		update: s.ledger.UpdateBudget,
		remove: s.ledger.DeleteBudget,
		setID:  func(b *core.Budget, id string) { b.ID = id },
		clean:  func(b *core.Budget) { b.Name = sanitizeInput(b.Name) },
	}
}

func (s *Server) goalRoutes() crudRoutes[core.Goal] {
	return crudRoutes[core.Goal]{
		list:   func(*http.Request) []core.Goal { return s.ledger.Goals() },
		create: s.ledger.AddGoal,
		update: s.ledger.UpdateGoal,
		remove: s.ledger.DeleteGoal,
		setID:  func(g *core.Goal, id string) { g.ID = id },
		clean: func(g *core.Goal) {
			g.Name = sanitizeInput(g.Name)
			g.Category = sanitizeInput(g.Category)
		},
	}
}

// handleCategoryOptions lists the categories a form offers for ?type.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	typ, err := ParseTransactionType(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(report.CategoriesForType(s.ledger.Categories(), typ)).Write(w)
}

// handleUsedCategories lists the category names transactions carry, for the
// list page filter.
func (s *Server) handleUsedCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(report.DistinctCategories(s.ledger.Transactions())).Write(w)
}

type contributeRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.ledger.ContributeToGoal(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(report.GoalProgressFor(g, s.now())).Write(w)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.ledger.User()).Write(w)
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	var patch ledger.UserPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Name != nil {
		name := sanitizeInput(*patch.Name)
		patch.Name = &name
	}
	u, err := s.ledger.UpdateUser(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(u).Write(w)
}
