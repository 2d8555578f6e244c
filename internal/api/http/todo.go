package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/todovault/todovault/internal/api/service"
	"github.com/todovault/todovault/pkg/apierr"
	"github.com/todovault/todovault/pkg/httpx"
	"github.com/todovault/todovault/pkg/slogx"

	validation "github.com/go-ozzo/ozzo-validation"
)

// TodoHandler serves the todo CRUD and batch endpoints. Every route sits
// behind the authn middleware; ownership is enforced in the service layer.
type TodoHandler struct {
	TodoService *service.TodoService
}

type createTodoRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	UserID    string `json:"userId"`
}

func (r createTodoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.UserID, validation.Required),
	)
}

// updateTodoRequest uses pointers so an omitted field is distinguishable
// from a zero value and leaves the stored value alone.
type updateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

type batchTodoRequest struct {
	Todos []domain.Todo `json:"todos"`
}

func (r batchTodoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Todos, validation.Required),
	)
}

// writeTodoError maps service errors onto the fixed status/message taxonomy.
func writeTodoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		apierr.BadRequest("Invalid ID").Write(w)
	case errors.Is(err, service.ErrInvalidUserID):
		apierr.BadRequest("Invalid user ID").Write(w)
	case errors.Is(err, service.ErrTextRequired):
		apierr.BadRequest("Text is required").Write(w)
	case errors.Is(err, service.ErrNotCompleted):
		apierr.BadRequest("Todo is not completed").Write(w)
	case errors.Is(err, service.ErrTodoNotFound):
		apierr.NotFound("Todo not found").Write(w)
	case errors.Is(err, service.ErrForbidden):
		apierr.Forbidden("Not authorized").Write(w)
	default:
		slogx.FromContext(r.Context()).Error("todo request failed", "err", err)
		apierr.Internal("Error on server").Write(w)
	}
}

// HandleList godoc
//
//	@Summary		List todos
//	@Description	Returns the todos owned by the user in the path, newest first. Callers may only list their own todos.
//	@Tags			Todo
//	@Produce		json
//	@Param			userId	path		string	true	"Owning user id"
//	@Success		200		{array}		domain.Todo
//	@Failure		403		{object}	apierr.Error
//	@Security		BearerAuth
//	@Router			/todo/{userId} [get]
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	todos, err := h.TodoService.ListByUser(ctx, httpx.UserIDFromContext(ctx), r.PathValue("userId"))
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, todos)
}

// HandleGetOne godoc
//
//	@Summary	Fetch a single todo
//	@Tags		Todo
//	@Produce	json
//	@Param		id	path		string	true	"Todo id"
//	@Success	200	{object}	domain.Todo
//	@Failure	400	{object}	apierr.Error	"Malformed id"
//	@Failure	404	{object}	apierr.Error
//	@Security	BearerAuth
//	@Router		/todo/getOne/{id} [get]
func (h *TodoHandler) HandleGetOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	todo, err := h.TodoService.Get(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, todo)
}

// HandleCreate godoc
//
//	@Summary		Create a todo
//	@Description	The body's userId must match the authenticated identity.
//	@Tags			Todo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createTodoRequest	true	"Todo payload"
//	@Success		201		{object}	domain.Todo
//	@Failure		400		{object}	apierr.Error	"Missing text or mismatched userId"
//	@Security		BearerAuth
//	@Router			/todo/ [post]
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest("Text is required").Write(w)
		return
	}
	if err := req.Validate(); err != nil {
		apierr.BadRequest("Text is required").Write(w)
		return
	}

	todo, err := h.TodoService.Create(ctx, httpx.UserIDFromContext(ctx), req.UserID, req.Text, req.Completed)
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, todo)
}

// HandleUpdate godoc
//
//	@Summary	Update a todo
//	@Tags		Todo
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Todo id"
//	@Param		body	body		updateTodoRequest	true	"New values"
//	@Success	200		{object}	domain.Todo
//	@Failure	400		{object}	apierr.Error
//	@Failure	403		{object}	apierr.Error	"Caller is not the owner"
//	@Failure	404		{object}	apierr.Error
//	@Security	BearerAuth
//	@Router		/todo/{id} [put]
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest("Text is required").Write(w)
		return
	}

	todo, err := h.TodoService.Update(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"), req.Text, req.Completed)
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, todo)
}

// HandleDelete godoc
//
//	@Summary	Delete a todo
//	@Tags		Todo
//	@Produce	json
//	@Param		id	path		string	true	"Todo id"
//	@Success	200	{object}	domain.Todo	"The deleted todo"
//	@Failure	400	{object}	apierr.Error
//	@Failure	403	{object}	apierr.Error
//	@Failure	404	{object}	apierr.Error
//	@Security	BearerAuth
//	@Router		/todo/{id} [delete]
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	todo, err := h.TodoService.Delete(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, todo)
}

// HandleToggleAll godoc
//
//	@Summary		Batch-update todos
//	@Description	Writes the given text/completed values onto every referenced todo. Updates run concurrently with no transactional atomicity.
//	@Tags			Todo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		batchTodoRequest	true	"Todos to update"
//	@Success		200		{array}		domain.Todo
//	@Failure		400		{object}	apierr.Error	"Empty batch"
//	@Failure		403		{object}	apierr.Error	"Batch references a foreign todo"
//	@Security		BearerAuth
//	@Router			/todo/toggleAll [put]
func (h *TodoHandler) HandleToggleAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest("Invalid ID").Write(w)
		return
	}
	if err := req.Validate(); err != nil {
		apierr.BadRequest("Invalid ID").Write(w)
		return
	}

	updated, err := h.TodoService.ToggleAll(ctx, httpx.UserIDFromContext(ctx), req.Todos)
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

// HandleClearCompleted godoc
//
//	@Summary		Batch-delete completed todos
//	@Description	Deletes every referenced todo and returns the deleted ids. The whole batch is rejected if any todo is not completed.
//	@Tags			Todo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		batchTodoRequest	true	"Todos to delete"
//	@Success		200		{array}		string
//	@Failure		400		{object}	apierr.Error	"Empty batch or a todo is not completed"
//	@Failure		403		{object}	apierr.Error
//	@Security		BearerAuth
//	@Router			/todo/clearCompleted [post]
func (h *TodoHandler) HandleClearCompleted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest("Invalid ID").Write(w)
		return
	}
	if err := req.Validate(); err != nil {
		apierr.BadRequest("Invalid ID").Write(w)
		return
	}

	ids, err := h.TodoService.ClearCompleted(ctx, httpx.UserIDFromContext(ctx), req.Todos)
	if err != nil {
		writeTodoError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ids)
}
