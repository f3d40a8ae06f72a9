package http

import (
	"net/http"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	typ, err := ParseOptionalType(r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}

	var tags []core.Tag
	if typ == "" {
		tags, err = s.svc.Tags.ListAll(r.Context())
	} else {
		tags, err = s.svc.Tags.ListByType(r.Context(), typ)
	}
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Payload(newTagDTOs(tags)).Write(w)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		respondError(w, r, log.OpCreate, &core.ValidationError{Field: "type", Err: err})
		return
	}

	tag, err := s.svc.Tags.Create(r.Context(), services.NewTag{
		Name:  sanitizeInput(req.Name),
		Type:  typ,
		Icon:  sanitizeInput(req.Icon),
		Color: strings.TrimSpace(req.Color),
	})
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Payload(newTagDTO(tag)).Write(w)
}

// handleDeleteTag answers 204 for built-in and unknown tags as well.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	if err := s.svc.Tags.Delete(r.Context(), id); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ParseWindow(q, s.now())
	if err != nil {
		respondError(w, r, log.OpRefresh, err)
		return
	}
	tagIDs, err := ParseTagIDs(q.Get("tags"))
	if err != nil {
		respondError(w, r, log.OpRefresh, err)
		return
	}
	typ, err := ParseOptionalType(q.Get("type"))
	if err != nil {
		respondError(w, r, log.OpRefresh, err)
		return
	}

	snap, err := s.svc.Reports.Refresh(r.Context(), services.ListRequest{Window: window, TagIDs: tagIDs, Type: typ})
	if err != nil {
		respondError(w, r, log.OpRefresh, err)
		return
	}
	NewJSONResponse().Payload(newSnapshotDTO(snap)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, log.OpQuery, err)
		return
	}
	tx, err := s.svc.Ledger.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, log.OpQuery, err)
		return
	}
	NewJSONResponse().Payload(newTransactionDTO(tx)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}

	amount, err := ParseAmountNumber(req.Amount)
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		respondError(w, r, log.OpCreate, &core.ValidationError{Field: "type", Err: err})
		return
	}
	date, err := ParseTimestamp(req.Date, s.now())
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		if currency, err = s.svc.Settings.DefaultCurrency(r.Context()); err != nil {
			respondError(w, r, log.OpCreate, err)
			return
		}
	}

	id, err := s.svc.Ledger.Insert(r.Context(), services.NewTransaction{
		Amount:   amount,
		Currency: currency,
		Date:     date,
		TagID:    req.TagID,
		Type:     typ,
		Note:     sanitizeInput(req.Note),
	})
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction recorded",
		log.NewFields().WithTransaction(id, amount.StringFixed(core.AmountScale), currency, string(typ)).Args()...)
	NewJSONResponse().Status(http.StatusCreated).Payload(createdResponse{ID: id}).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	if err := s.svc.Ledger.Delete(r.Context(), id); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	window, err := ParseWindow(r.URL.Query(), s.now())
	if err != nil {
		respondError(w, r, log.OpQuery, err)
		return
	}
	start, end := window.Resolve()
	currencies, err := s.svc.Ledger.DistinctCurrencies(r.Context(), start, end)
	if err != nil {
		respondError(w, r, log.OpQuery, err)
		return
	}
	if currencies == nil {
		currencies = []string{}
	}
	NewJSONResponse().Payload(currencies).Write(w)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ParseWindow(q, s.now())
	if err != nil {
		respondError(w, r, log.OpStats, err)
		return
	}
	tagIDs, err := ParseTagIDs(q.Get("tags"))
	if err != nil {
		respondError(w, r, log.OpStats, err)
		return
	}
	typ, err := ParseOptionalType(q.Get("type"))
	if err != nil {
		respondError(w, r, log.OpStats, err)
		return
	}

	report, err := s.svc.Reports.Statistics(r.Context(), services.StatsRequest{
		Window:   window,
		Type:     typ,
		Currency: strings.ToUpper(strings.TrimSpace(q.Get("currency"))),
		TagIDs:   tagIDs,
	})
	if err != nil {
		respondError(w, r, log.OpStats, err)
		return
	}
	if report.Currencies == nil {
		report.Currencies = []string{}
	}
	NewJSONResponse().Payload(report).Write(w)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ParseWindow(q, s.now())
	if err != nil {
		respondError(w, r, log.OpQuery, err)
		return
	}
	dir, err := core.ParseDirection(q.Get("direction"))
	if err != nil {
		respondError(w, r, log.OpQuery, &core.ValidationError{Field: "direction", Err: err})
		return
	}
	NewJSONResponse().Payload(newWindowDTO(s.svc.Reports.Navigate(window, dir))).Write(w)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Recurring.List(r.Context())
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Payload(newRecurringDTOs(items, core.DateOf(s.now()))).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	amount, err := ParseAmountNumber(req.Amount)
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		if currency, err = s.svc.Settings.DefaultCurrency(r.Context()); err != nil {
			respondError(w, r, log.OpCreate, err)
			return
		}
	}

	id, err := s.svc.Recurring.Create(r.Context(), services.NewRecurringExpense{
		Amount:     amount,
		Currency:   currency,
		DayOfMonth: req.DayOfMonth,
		TagID:      req.TagID,
		Note:       sanitizeInput(req.Note),
	})
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Payload(createdResponse{ID: id}).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	if err := s.svc.Recurring.Delete(r.Context(), id); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleGetSetting reports the effective default currency even before one
// is stored.
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == core.SettingDefaultCurrency {
		v, err := s.svc.Settings.DefaultCurrency(r.Context())
		if err != nil {
			respondError(w, r, log.OpQuery, err)
			return
		}
		NewJSONResponse().Payload(settingResponse{Key: key, Value: v}).Write(w)
		return
	}

	v, ok, err := s.svc.Settings.Get(r.Context(), key)
	if err != nil {
		respondError(w, r, log.OpQuery, err)
		return
	}
	if !ok {
		respondError(w, r, log.OpQuery, core.ErrNotFound)
		return
	}
	NewJSONResponse().Payload(settingResponse{Key: key, Value: v}).Write(w)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	var req putSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	key := r.PathValue("key")
	if err := s.svc.Settings.Set(r.Context(), key, req.Value); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
