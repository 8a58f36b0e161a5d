package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Owner", "Participants", "Tasks").Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns projects the user owns or participates in
func (r *GormProjectRepository) ListForUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	participating := r.db.Model(&models.ProjectParticipant{}).Select("project_id").Where("user_id = ?", userID)

	query := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("owner_id = ? OR id IN (?)", userID, participating).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	projects := []models.Project{}
	if err := query.Order("created_at ASC, id ASC").Scopes(database.Paginate(params)).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Update saves title and description of a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Model(project).Updates(map[string]interface{}{
		"title":       project.Title,
		"description": project.Description,
	}).Error
}

// Delete removes a project with its tasks and participant rows
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectParticipant{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IsParticipant reports whether userID was added to the project
func (r *GormProjectRepository) IsParticipant(ctx context.Context, projectID, userID uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProjectParticipant{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddParticipant grants userID access to the project
func (r *GormProjectRepository) AddParticipant(ctx context.Context, projectID, userID uint64) error {
	return r.db.WithContext(ctx).Create(&models.ProjectParticipant{
		ProjectID: projectID,
		UserID:    userID,
	}).Error
}

// ListParticipants returns the project's participants ordered by username
func (r *GormProjectRepository) ListParticipants(ctx context.Context, projectID uint64) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Joins("JOIN project_participants ON project_participants.user_id = users.id").
		Where("project_participants.project_id = ?", projectID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SearchCandidates returns users matching query that are neither the owner
// nor already participants of project
func (r *GormProjectRepository) SearchCandidates(ctx context.Context, project *models.Project, query string, params utils.PaginationParams) ([]models.User, error) {
	existing := r.db.Model(&models.ProjectParticipant{}).Select("user_id").Where("project_id = ?", project.ID)

	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Where("id <> ?", project.OwnerID).
		Where("id NOT IN (?)", existing).
		Scopes(database.ContainsFold(query, "username", "email"), database.Paginate(params)).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountTasks returns total and completed task counts for the project
func (r *GormProjectRepository) CountTasks(ctx context.Context, projectID uint64) (int64, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Task{}).Where("project_id = ?", projectID).Session(&gorm.Session{})

	var total, completed int64
	if err := base.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := base.Where("is_completed = ?", true).Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}
