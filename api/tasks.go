package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/service"
)

func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	ctx, cancel := s.storeContext(r)
	defer cancel()

	tasks, err := s.Tasks.List(ctx, u.ID)
	if err != nil {
		s.taskError(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	var in models.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadPayload)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	task, err := s.Tasks.Create(ctx, u.ID, in)
	if err != nil {
		s.taskError(w, r, "create", err)
		return
	}
	taskOperations.WithLabelValues("create", "ok").Inc()
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	var in models.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadPayload)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	task, err := s.Tasks.Update(ctx, u.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		s.taskError(w, r, "update", err)
		return
	}
	taskOperations.WithLabelValues("update", "ok").Inc()
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.Tasks.Delete(ctx, u.ID, chi.URLParam(r, "id")); err != nil {
		s.taskError(w, r, "delete", err)
		return
	}
	taskOperations.WithLabelValues("delete", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task removed"})
}

// taskError maps a service error onto its status code.
func (s *Server) taskError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		taskOperations.WithLabelValues(op, "invalid").Inc()
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		taskOperations.WithLabelValues(op, "not_found").Inc()
		writeError(w, http.StatusNotFound, "Task not found")
	default:
		taskOperations.WithLabelValues(op, "error").Inc()
		log.WithFields(log.Fields{
			"op":   op,
			"user": userFromContext(r.Context()).ID,
		}).WithError(err).Error("task operation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
