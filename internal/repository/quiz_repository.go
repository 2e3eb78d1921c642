package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

// LockByID 在事务内锁定测验行，串行化同一学生的并发提交，
// 保证 attempt_number 按提交顺序递增。sqlite 下退化为普通读取。
func (r *QuizRepository) LockByID(tx *gorm.DB, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) CountQuestions(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func (r *QuizRepository) ListQuestions(quizID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).Order("position asc, id asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) ListOptions(questionIDs []uint) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var opts []model.Option
	err := r.DB.Where("question_id IN ?", questionIDs).Order("position asc, id asc").Find(&opts).Error
	return opts, err
}

// CountAttempts 同一学生在同一测验上的历史提交次数
func (r *QuizRepository) CountAttempts(tx *gorm.DB, quizID, learnerID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND learner_id = ?", quizID, learnerID).
		Count(&count).Error
	return count, err
}

func (r *QuizRepository) ListAttempts(quizID, learnerID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND learner_id = ?", quizID, learnerID).
		Order("attempt_number asc").Find(&attempts).Error
	return attempts, err
}

// DeleteCascade 删除测验及其题目、选项和提交记录，供 QUIZ 课时删除时在事务内调用。
func (r *QuizRepository) DeleteCascade(tx *gorm.DB, quizID uint) error {
	sub := tx.Model(&model.Question{}).Select("id").Where("quiz_id = ?", quizID)
	if err := tx.Where("question_id IN (?)", sub).Delete(&model.Option{}).Error; err != nil {
		return err
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&model.QuizAttempt{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Quiz{}, quizID).Error
}
