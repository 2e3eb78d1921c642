package model

// swagger:model Quiz
type Quiz struct {
	BaseModel

	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`

	// 四档奖励：按学生在该测验上的第几次尝试取值，不做递减校验
	RewardFirstTry   int `gorm:"default:0" json:"rewardFirstTry"`
	RewardSecondTry  int `gorm:"default:0" json:"rewardSecondTry"`
	RewardThirdTry   int `gorm:"default:0" json:"rewardThirdTry"`
	RewardFourthPlus int `gorm:"default:0" json:"rewardFourthPlus"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// RewardFor 固定四档查表，第 4 次及以后统一取 fourth_plus。
func (q *Quiz) RewardFor(attemptNumber int) int {
	switch attemptNumber {
	case 1:
		return q.RewardFirstTry
	case 2:
		return q.RewardSecondTry
	case 3:
		return q.RewardThirdTry
	default:
		return q.RewardFourthPlus
	}
}

// swagger:model Question
type Question struct {
	BaseModel

	QuizID uint   `gorm:"index;not null" json:"quizId"`
	Text   string `gorm:"type:text;not null" json:"text"`

	// 插入顺序即展示顺序，删除不重排
	Position int `gorm:"default:0" json:"position"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// swagger:model Option
type Option struct {
	BaseModel

	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Position   int    `gorm:"default:0" json:"position"`
}

func (Option) TableName() string {
	return "quiz_options"
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel

	QuizID    uint `gorm:"uniqueIndex:idx_attempt_quiz_learner_number;not null" json:"quizId"`
	LearnerID uint `gorm:"uniqueIndex:idx_attempt_quiz_learner_number;index;not null" json:"learnerId"`

	// 同一学生在同一测验上的第几次提交，从 1 起单调递增。
	// 唯一索引兜底：并发提交即便绕过行锁也只会有一个写入者成功
	AttemptNumber int     `gorm:"uniqueIndex:idx_attempt_quiz_learner_number;not null" json:"attemptNumber"`
	Score         float64 `gorm:"not null" json:"score"`
	AwardedPoints int     `gorm:"not null" json:"awardedPoints"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
