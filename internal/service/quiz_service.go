package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     *repository.QuizRepository
	CourseRepo   *repository.CourseRepository
	AttendeeRepo *repository.AttendeeRepository
	Gate         *AccessGate
	DB           *gorm.DB
}

func NewQuizService(quizRepo *repository.QuizRepository, courseRepo *repository.CourseRepository, attendeeRepo *repository.AttendeeRepository, gate *AccessGate, db *gorm.DB) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		CourseRepo:   courseRepo,
		AttendeeRepo: attendeeRepo,
		Gate:         gate,
		DB:           db,
	}
}

type OptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionWithOptions struct {
	model.Question
	Options []model.Option `json:"options"`
}

type QuizDetail struct {
	model.Quiz
	Questions []QuestionWithOptions `json:"questions"`
}

// AttemptResult 一次提交的评分结果
type AttemptResult struct {
	Score         float64 `json:"score"`
	AttemptNumber int     `json:"attemptNumber"`
	AwardedPoints int     `json:"awardedPoints"`
}

// findQuiz 通过测验定位其归属课程，权限沿 quiz → course → responsible_user 解析
func (s *QuizService) findQuiz(quizID uint) (*model.Quiz, *model.Course, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotFound
		}
		return nil, nil, util.WrapStorage(err)
	}
	course, err := s.CourseRepo.FindByID(quiz.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotFound
		}
		return nil, nil, util.WrapStorage(err)
	}
	return quiz, course, nil
}

func (s *QuizService) authorizeEdit(claims *util.Claims, quizID uint) (*model.Quiz, error) {
	quiz, course, err := s.findQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(claims, CapEditQuiz, course.ResponsibleUserID); err != nil {
		return nil, err
	}
	return quiz, nil
}

// AddQuestion 题目按插入顺序排列。选项允许为空、允许没有正确项——
// 这样的题目永远无法答对，但数据层不拒绝。
func (s *QuizService) AddQuestion(claims *util.Claims, quizID uint, text string, options []OptionRequest) (*QuestionWithOptions, error) {
	if _, err := s.authorizeEdit(claims, quizID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, util.Validationf("question text must not be empty")
	}

	var created QuestionWithOptions
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
			return err
		}

		question := &model.Question{
			QuizID:   quizID,
			Text:     text,
			Position: int(count) + 1,
		}
		if err := tx.Create(question).Error; err != nil {
			return err
		}

		opts, err := createOptions(tx, question.ID, options)
		if err != nil {
			return err
		}
		created = QuestionWithOptions{Question: *question, Options: opts}
		return nil
	})
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return &created, nil
}

// UpdateQuestion 整体替换选项列表，不存在部分更新
func (s *QuizService) UpdateQuestion(claims *util.Claims, questionID uint, text string, options []OptionRequest) (*QuestionWithOptions, error) {
	question, err := s.QuizRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}
	if _, err := s.authorizeEdit(claims, question.QuizID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, util.Validationf("question text must not be empty")
	}

	var updated QuestionWithOptions
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		question.Text = text
		if err := tx.Save(question).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		opts, err := createOptions(tx, question.ID, options)
		if err != nil {
			return err
		}
		updated = QuestionWithOptions{Question: *question, Options: opts}
		return nil
	})
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return &updated, nil
}

func createOptions(tx *gorm.DB, questionID uint, options []OptionRequest) ([]model.Option, error) {
	opts := make([]model.Option, 0, len(options))
	for idx, o := range options {
		opt := model.Option{
			QuestionID: questionID,
			Text:       o.Text,
			IsCorrect:  o.IsCorrect,
			Position:   idx + 1,
		}
		if err := tx.Create(&opt).Error; err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// DeleteQuestion 剩余题目不重排，展示顺序即底层序列的自然顺序
func (s *QuizService) DeleteQuestion(claims *util.Claims, questionID uint) error {
	question, err := s.QuizRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return util.WrapStorage(err)
	}
	if _, err := s.authorizeEdit(claims, question.QuizID); err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, question.ID).Error
	})
	if err != nil {
		return util.WrapStorage(err)
	}
	return nil
}

func (s *QuizService) UpdateRewardSchedule(claims *util.Claims, quizID uint, req RewardScheduleRequest) (*model.Quiz, error) {
	quiz, err := s.authorizeEdit(claims, quizID)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	quiz.RewardFirstTry = req.FirstTry
	quiz.RewardSecondTry = req.SecondTry
	quiz.RewardThirdTry = req.ThirdTry
	quiz.RewardFourthPlus = req.FourthPlus
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, util.WrapStorage(err)
	}
	return quiz, nil
}

func (s *QuizService) GetDetail(claims *util.Claims, quizID uint) (*QuizDetail, error) {
	quiz, err := s.authorizeEdit(claims, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.loadQuestions(quizID)
	if err != nil {
		return nil, err
	}
	return &QuizDetail{Quiz: *quiz, Questions: questions}, nil
}

func (s *QuizService) loadQuestions(quizID uint) ([]QuestionWithOptions, error) {
	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	options, err := s.QuizRepo.ListOptions(ids)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	byQuestion := make(map[uint][]model.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	out := make([]QuestionWithOptions, len(questions))
	for i, q := range questions {
		out[i] = QuestionWithOptions{Question: q, Options: byQuestion[q.ID]}
	}
	return out, nil
}

// ScoreAttempt 评分一次提交。每道题：所选选项集合与正确选项集合完全相等
// 才算对，不给部分分。奖励按第几次尝试固定四档查表。
// 只有课程的学员本人可以提交，管理员除外。
func (s *QuizService) ScoreAttempt(claims *util.Claims, quizID uint, answers map[uint][]uint) (*AttemptResult, error) {
	if claims == nil {
		return nil, util.ErrUnauthenticated
	}

	quiz, _, err := s.findQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if claims.Role != model.Admin {
		if claims.Role != model.Learner {
			return nil, util.ErrForbidden
		}
		enrolled, err := s.AttendeeRepo.Exists(quiz.CourseID, claims.UserID)
		if err != nil {
			return nil, util.WrapStorage(err)
		}
		if !enrolled {
			return nil, util.ErrForbidden
		}
	}

	questions, err := s.loadQuestions(quizID)
	if err != nil {
		return nil, err
	}

	correctCount := 0
	for _, q := range questions {
		if questionAnswered(q.Options, answers[q.ID]) {
			correctCount++
		}
	}

	score := 0.0
	if len(questions) > 0 {
		score = float64(correctCount) / float64(len(questions))
	}

	var result *AttemptResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 先锁测验行再计数，避免同一学生并发提交拿到相同的 attempt_number
		locked, err := s.QuizRepo.LockByID(tx, quizID)
		if err != nil {
			return err
		}
		prior, err := s.QuizRepo.CountAttempts(tx, quizID, claims.UserID)
		if err != nil {
			return err
		}
		attemptNumber := int(prior) + 1
		awarded := locked.RewardFor(attemptNumber)

		attempt := &model.QuizAttempt{
			QuizID:        quizID,
			LearnerID:     claims.UserID,
			AttemptNumber: attemptNumber,
			Score:         score,
			AwardedPoints: awarded,
		}
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		result = &AttemptResult{
			Score:         score,
			AttemptNumber: attemptNumber,
			AwardedPoints: awarded,
		}
		return nil
	})
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return result, nil
}

// questionAnswered 集合精确匹配，与顺序无关。没有正确选项的题目
// 视为不可作答，任何提交都不得分。
func questionAnswered(options []model.Option, selected []uint) bool {
	correct := make(map[uint]bool)
	for _, o := range options {
		if o.IsCorrect {
			correct[o.ID] = true
		}
	}
	if len(correct) == 0 {
		return false
	}

	chosen := make(map[uint]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}
	if len(chosen) != len(correct) {
		return false
	}
	for id := range chosen {
		if !correct[id] {
			return false
		}
	}
	return true
}
