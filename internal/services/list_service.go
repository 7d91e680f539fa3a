package services

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/google/uuid"
)

const maxListItemLength = 280

// Storage keys of each list kind, shared with the browser client.
var listKeys = map[string]string{
	models.ListGoals: "goals-storage",
	models.ListTodos: "todo-storage",
}

var errItemNotFound = stderrors.New("list item not found")

type listDoc struct {
	Items []models.ListItem `json:"items"`
}

// ListService handles the student's goal and todo lists
type ListService interface {
	List(ctx context.Context, studentID int64, kind string) ([]models.ListItem, error)
	Add(ctx context.Context, studentID int64, kind, text string) (*models.ListItem, error)
	Update(ctx context.Context, studentID int64, kind, id string, patch models.ListItemPatch) (*models.ListItem, error)
	Delete(ctx context.Context, studentID int64, kind, id string) error
}

type listService struct {
	kv    kvstore.Store
	newID func() string
}

// NewListService creates a new ListService
func NewListService(kv kvstore.Store) ListService {
	return &listService{kv: kv, newID: uuid.NewString}
}

func (s *listService) List(ctx context.Context, studentID int64, kind string) ([]models.ListItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing %s: student_id=%d", kind, studentID)

	key, err := listKey(kind)
	if err != nil {
		return nil, err
	}
	var doc listDoc
	if _, err := kvstore.GetJSON(ctx, s.kv, kvstore.StudentScope(studentID), key, &doc); err != nil {
		log.Error("failed to load %s: %v", kind, err)
		return nil, errors.NewInternalError(err)
	}
	if doc.Items == nil {
		doc.Items = []models.ListItem{}
	}
	return doc.Items, nil
}

func (s *listService) Add(ctx context.Context, studentID int64, kind, text string) (*models.ListItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding to %s: student_id=%d", kind, studentID)

	key, err := listKey(kind)
	if err != nil {
		return nil, err
	}
	text, err = cleanText(text)
	if err != nil {
		return nil, err
	}

	item := models.ListItem{ID: s.newID(), Text: text}
	_, _, err = kvstore.Update(ctx, s.kv, kvstore.StudentScope(studentID), key, func(d *listDoc) (bool, error) {
		d.Items = append(d.Items, item)
		return true, nil
	})
	if err != nil {
		log.Error("failed to add to %s: %v", kind, err)
		return nil, errors.NewInternalError(err)
	}
	return &item, nil
}

func (s *listService) Update(ctx context.Context, studentID int64, kind, id string, patch models.ListItemPatch) (*models.ListItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating %s item %s: student_id=%d", kind, id, studentID)

	key, err := listKey(kind)
	if err != nil {
		return nil, err
	}
	if patch.Text != nil {
		text, err := cleanText(*patch.Text)
		if err != nil {
			return nil, err
		}
		patch.Text = &text
	}

	var updated models.ListItem
	_, _, err = kvstore.Update(ctx, s.kv, kvstore.StudentScope(studentID), key, func(d *listDoc) (bool, error) {
		for i := range d.Items {
			if d.Items[i].ID != id {
				continue
			}
			if patch.Text != nil {
				d.Items[i].Text = *patch.Text
			}
			if patch.Completed != nil {
				d.Items[i].Completed = *patch.Completed
			}
			updated = d.Items[i]
			return true, nil
		}
		return false, errItemNotFound
	})
	if stderrors.Is(err, errItemNotFound) {
		return nil, errors.NewNotFoundError(kind+" item", id)
	}
	if err != nil {
		log.Error("failed to update %s item: %v", kind, err)
		return nil, errors.NewInternalError(err)
	}
	return &updated, nil
}

func (s *listService) Delete(ctx context.Context, studentID int64, kind, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting %s item %s: student_id=%d", kind, id, studentID)

	key, err := listKey(kind)
	if err != nil {
		return err
	}
	_, _, err = kvstore.Update(ctx, s.kv, kvstore.StudentScope(studentID), key, func(d *listDoc) (bool, error) {
		for i := range d.Items {
			if d.Items[i].ID == id {
				d.Items = append(d.Items[:i], d.Items[i+1:]...)
				return true, nil
			}
		}
		return false, errItemNotFound
	})
	if stderrors.Is(err, errItemNotFound) {
		return errors.NewNotFoundError(kind+" item", id)
	}
	if err != nil {
		log.Error("failed to delete %s item: %v", kind, err)
		return errors.NewInternalError(err)
	}
	return nil
}

func listKey(kind string) (string, error) {
	key, ok := listKeys[kind]
	if !ok {
		return "", errors.NewNotFoundError("list", kind)
	}
	return key, nil
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.NewValidationError("text", "cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxListItemLength {
		return "", errors.NewValidationError("text", "must be at most 280 characters")
	}
	return text, nil
}
