package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archivedoc/internal/model"
	"archivedoc/internal/repository"
	repoMocks "archivedoc/internal/repository/mocks"
	storeMocks "archivedoc/internal/storage/mocks"
)

func validSavePayload() SaveDocumentPayload {
	return SaveDocumentPayload{
		Title:        "Letter from the Front",
		FileName:     "l1.pdf",
		Content:      "Dear family, we have moved camp again.",
		DocumentType: model.DocTypeLetter,
		Entities: []SaveEntityInput{
			{Name: "John Smith", Type: model.EntityPerson},
			{Name: "john smith", Type: model.EntityPerson},
			{Name: "Warsaw", Type: model.EntityLocation},
		},
	}
}

func TestDocumentService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate natural keys collapse to one resolve", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mDocs := new(repoMocks.MockDocumentRepository)
		mEntities := new(repoMocks.MockEntityRepository)
		svc := NewDocumentService(db, mDocs, NewEntityResolver(mEntities), nil)

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()

		john := &model.Entity{ID: "e-john", Name: "John Smith", EntityType: model.EntityPerson}
		warsaw := &model.Entity{ID: "e-warsaw", Name: "Warsaw", EntityType: model.EntityLocation}

		// "john smith" never reaches the resolver; only the first casing does.
		mEntities.On("FindByNameTypeTx", ctx, mock.Anything, "John Smith", model.EntityPerson).
			Return(john, nil).Once()
		mEntities.On("FindByNameTypeTx", ctx, mock.Anything, "Warsaw", model.EntityLocation).
			Return(warsaw, nil).Once()

		mDocs.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.ID != "" && doc.Title == "Letter from the Front" && doc.DocumentType == model.DocTypeLetter
		})).Return(func(ctx context.Context, tx *sql.Tx, doc *model.Document) *model.Document {
			return doc
		}, nil).Once()
		mDocs.On("LinkEntitiesTx", ctx, mock.Anything, mock.Anything, []string{"e-john", "e-warsaw"}).
			Return(nil).Once()

		doc, err := svc.Save(ctx, validSavePayload())
		require.NoError(t, err)
		require.Len(t, doc.Entities, 2)
		assert.Equal(t, "John Smith", doc.Entities[0].Name)
		assert.Equal(t, "Warsaw", doc.Entities[1].Name)

		assert.NoError(t, dbMock.ExpectationsWereMet())
		mDocs.AssertExpectations(t)
		mEntities.AssertExpectations(t)
	})

	t.Run("validation failures are collected, nothing touches the store", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, nil)

		p := SaveDocumentPayload{
			Title:        "",
			FileName:     "",
			Content:      strings.Repeat("x", maxContentLen+1),
			DocumentType: "postcard",
			ImageRef:     "",
			Entities:     nil,
		}
		_, err := svc.Save(context.Background(), p)

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.GreaterOrEqual(t, len(ve.Violations), 5)
	})

	t.Run("photo without image ref fails validation", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, nil)

		p := validSavePayload()
		p.DocumentType = model.DocTypePhoto
		p.ImageRef = ""
		_, err := svc.Save(context.Background(), p)

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		found := false
		for _, v := range ve.Violations {
			if strings.Contains(v, "image_ref") && strings.Contains(v, "photo") {
				found = true
			}
		}
		assert.True(t, found, "violations should name the photo/image_ref rule: %v", ve.Violations)
	})

	t.Run("too many entities fails validation", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, nil)

		p := validSavePayload()
		p.Entities = nil
		for i := 0; i <= maxEntities; i++ {
			p.Entities = append(p.Entities, SaveEntityInput{Name: string(rune('a' + i%26)), Type: model.EntityPerson})
		}
		// Distinct names keep dedup out of the count.
		for i := range p.Entities {
			p.Entities[i].Name = strings.Repeat("n", i+1)
		}
		_, err := svc.Save(context.Background(), p)

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("resolver failure rolls the transaction back", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mDocs := new(repoMocks.MockDocumentRepository)
		mEntities := new(repoMocks.MockEntityRepository)
		svc := NewDocumentService(db, mDocs, NewEntityResolver(mEntities), nil)

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		mEntities.On("FindByNameTypeTx", ctx, mock.Anything, "John Smith", model.EntityPerson).
			Return(nil, errors.New("connection reset")).Once()

		_, err = svc.Save(ctx, validSavePayload())
		var pe *model.PersistenceError
		require.ErrorAs(t, err, &pe)

		assert.NoError(t, dbMock.ExpectationsWereMet())
		mDocs.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("document insert failure rolls the transaction back", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mDocs := new(repoMocks.MockDocumentRepository)
		mEntities := new(repoMocks.MockEntityRepository)
		svc := NewDocumentService(db, mDocs, NewEntityResolver(mEntities), nil)

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		mEntities.On("FindByNameTypeTx", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(&model.Entity{ID: "e1"}, nil)
		mDocs.On("CreateTx", ctx, mock.Anything, mock.Anything).
			Return(nil, errors.New("insert fail")).Once()

		_, err = svc.Save(ctx, validSavePayload())
		var pe *model.PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, err.Error(), "insert fail")

		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mDocs *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "valid-id").Return(&model.Document{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing-id",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   "error-id",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "error-id").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(nil, mDocs, nil, nil)

			tt.setupMocks(mDocs)

			doc, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, model.ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				assert.Equal(t, tt.id, doc.ID)
			}
			mDocs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	mDocs := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(nil, mDocs, nil, nil)

	t.Run("pagination boundary - zero limit uses default", func(t *testing.T) {
		mDocs.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Document]{
				Items: []model.Document{{ID: "1"}, {ID: "2"}},
				Total: 2,
			}, nil).Once()

		res, err := svc.List(ctx, 0, -1)
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 2, res.Total)
		mDocs.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mDocs.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail")).Once()

		_, err := svc.List(ctx, 10, 0)
		assert.Error(t, err)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()

	newTitle := "Letter from the Front (restored)"

	t.Run("happy path patches title", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mDocs, nil, nil)

		current := &model.Document{
			ID:           "doc-1",
			Title:        "Letter from the Front",
			FileName:     "l1.pdf",
			Content:      "Dear family",
			DocumentType: model.DocTypeLetter,
			Entities:     []model.Entity{{ID: "e1"}},
		}
		mDocs.On("FindByID", ctx, "doc-1").Return(current, nil).Once()
		mDocs.On("Update", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.Title == newTitle && !doc.UpdatedAt.IsZero()
		})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
			return doc
		}, nil).Once()

		doc, err := svc.Update(ctx, "doc-1", DocumentPatch{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, newTitle, doc.Title)
		assert.Len(t, doc.Entities, 1)
		mDocs.AssertExpectations(t)
	})

	t.Run("patch to photo without image fails validation", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mDocs, nil, nil)

		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{
			ID:           "doc-1",
			Title:        "Untitled",
			FileName:     "p1.png",
			Content:      "a faded photograph",
			DocumentType: model.DocTypeLetter,
		}, nil).Once()

		photo := model.DocTypePhoto
		_, err := svc.Update(ctx, "doc-1", DocumentPatch{DocumentType: &photo})

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		mDocs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mStore *storeMocks.MockFileStore, mDocs *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "document with derived image cleans it up",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockFileStore, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "valid-id").
					Return(&model.Document{ID: "valid-id", ImageRef: "derived/scans/p1.png"}, nil)
				mDocs.On("Delete", ctx, "valid-id").Return(nil)
				mStore.On("Delete", ctx, "derived/scans/p1.png").Return(nil)
			},
		},
		{
			name: "source image refs are left alone",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockFileStore, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "valid-id").
					Return(&model.Document{ID: "valid-id", ImageRef: "scans/p1.png"}, nil)
				mDocs.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name: "derived image cleanup failure is best effort",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockFileStore, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "valid-id").
					Return(&model.Document{ID: "valid-id", ImageRef: "derived/scans/p1.png"}, nil)
				mDocs.On("Delete", ctx, "valid-id").Return(nil)
				mStore.On("Delete", ctx, "derived/scans/p1.png").Return(errors.New("storage fail"))
			},
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(mStore *storeMocks.MockFileStore, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "repository delete error",
			id:   "repo-fail-id",
			setupMocks: func(mStore *storeMocks.MockFileStore, mDocs *repoMocks.MockDocumentRepository) {
				mDocs.On("FindByID", ctx, "repo-fail-id").Return(&model.Document{ID: "repo-fail-id"}, nil)
				mDocs.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockFileStore)
			mDocs := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(nil, mDocs, nil, mStore)

			tt.setupMocks(mStore, mDocs)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, model.ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mDocs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_ImageURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns the image ref", func(t *testing.T) {
		mStore := new(storeMocks.MockFileStore)
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mDocs, nil, mStore)

		mDocs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", ImageRef: "derived/scans/p1.png"}, nil).Once()
		mStore.On("PresignGet", ctx, "derived/scans/p1.png", presignExpiry).
			Return("https://minio.local/signed", nil).Once()

		url, err := svc.ImageURL(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "https://minio.local/signed", url)
	})

	t.Run("document without image reports not found", func(t *testing.T) {
		mStore := new(storeMocks.MockFileStore)
		mDocs := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mDocs, nil, mStore)

		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil).Once()

		_, err := svc.ImageURL(ctx, "doc-1")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
