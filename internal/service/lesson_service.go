package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type LessonService struct {
	LessonRepo *repository.LessonRepository
	CourseRepo *repository.CourseRepository
	QuizRepo   *repository.QuizRepository
	Gate       *AccessGate
	DB         *gorm.DB
}

func NewLessonService(lessonRepo *repository.LessonRepository, courseRepo *repository.CourseRepository, quizRepo *repository.QuizRepository, gate *AccessGate, db *gorm.DB) *LessonService {
	return &LessonService{
		LessonRepo: lessonRepo,
		CourseRepo: courseRepo,
		QuizRepo:   quizRepo,
		Gate:       gate,
		DB:         db,
	}
}

type RewardScheduleRequest struct {
	FirstTry   int `json:"firstTry"`
	SecondTry  int `json:"secondTry"`
	ThirdTry   int `json:"thirdTry"`
	FourthPlus int `json:"fourthPlus"`
}

func (r *RewardScheduleRequest) validate() error {
	if r.FirstTry < 0 || r.SecondTry < 0 || r.ThirdTry < 0 || r.FourthPlus < 0 {
		return util.Validationf("reward points must be non-negative")
	}
	return nil
}

type LessonCreateRequest struct {
	Title      string `json:"title" binding:"required"`
	Type       string `json:"type" binding:"required"`
	ContentURL string `json:"contentUrl"`

	// 视频课时的时长，来自媒体上传接口的 ffmpeg 探测结果
	DurationSeconds int `json:"durationSeconds"`

	// 仅 quiz 类型课时使用：测验标题与奖励档位
	QuizTitle      string                 `json:"quizTitle"`
	RewardSchedule *RewardScheduleRequest `json:"rewardSchedule"`
}

type LessonPatchRequest struct {
	Title      *string `json:"title"`
	ContentURL *string `json:"contentUrl"`
}

func (s *LessonService) authorizeCourse(claims *util.Claims, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}
	if err := s.Gate.Authorize(claims, CapManageCourse, course.ResponsibleUserID); err != nil {
		return nil, err
	}
	return course, nil
}

// Append 在课程末尾追加课时，lesson_order = 当前最大值 + 1。
// quiz 类型课时与其 Quiz 记录在同一事务内创建，要么都落库要么都不落库。
func (s *LessonService) Append(claims *util.Claims, courseID uint, req LessonCreateRequest) (*model.Lesson, error) {
	if _, err := s.authorizeCourse(claims, courseID); err != nil {
		return nil, err
	}

	lessonType, err := model.ParseLessonType(req.Type)
	if err != nil {
		return nil, util.Validationf("%v", err)
	}

	if lessonType == model.LessonQuiz {
		if req.ContentURL != "" {
			return nil, util.Validationf("quiz lesson does not take a content url")
		}
		if req.RewardSchedule != nil {
			if err := req.RewardSchedule.validate(); err != nil {
				return nil, err
			}
		}
	} else if req.ContentURL == "" {
		return nil, util.Validationf("content url is required for %s lesson", lessonType)
	}

	var created *model.Lesson
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.CourseRepo.LockByID(tx, courseID); err != nil {
			return err
		}

		lesson := &model.Lesson{
			CourseID: courseID,
			Title:    req.Title,
			Type:     lessonType,
		}

		if lessonType == model.LessonQuiz {
			quizTitle := req.QuizTitle
			if quizTitle == "" {
				quizTitle = req.Title
			}
			quiz := &model.Quiz{
				CourseID: courseID,
				Title:    quizTitle,
			}
			if req.RewardSchedule != nil {
				quiz.RewardFirstTry = req.RewardSchedule.FirstTry
				quiz.RewardSecondTry = req.RewardSchedule.SecondTry
				quiz.RewardThirdTry = req.RewardSchedule.ThirdTry
				quiz.RewardFourthPlus = req.RewardSchedule.FourthPlus
			}
			if err := tx.Create(quiz).Error; err != nil {
				return err
			}
			lesson.QuizID = &quiz.ID
		} else {
			lesson.ContentURL = req.ContentURL
			if lessonType == model.LessonVideo && req.DurationSeconds > 0 {
				lesson.DurationSeconds = req.DurationSeconds
			}
		}

		max, err := s.LessonRepo.MaxOrder(tx, courseID)
		if err != nil {
			return err
		}
		lesson.LessonOrder = max + 1

		if err := tx.Create(lesson).Error; err != nil {
			return err
		}
		created = lesson
		return nil
	})

	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return created, nil
}

// Update 只改标题与载荷，从不触碰 lesson_order
func (s *LessonService) Update(claims *util.Claims, lessonID uint, patch LessonPatchRequest) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}
	if _, err := s.authorizeCourse(claims, lesson.CourseID); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, util.Validationf("title must not be empty")
		}
		lesson.Title = *patch.Title
	}
	if patch.ContentURL != nil {
		if lesson.Type == model.LessonQuiz {
			return nil, util.Validationf("quiz lesson does not take a content url")
		}
		if *patch.ContentURL == "" {
			return nil, util.Validationf("content url must not be empty")
		}
		lesson.ContentURL = *patch.ContentURL
	}

	if err := s.DB.Save(lesson).Error; err != nil {
		return nil, util.WrapStorage(err)
	}
	return lesson, nil
}

// Delete 删除课时并在同一事务内把更高序号整体前移，
// 外部永远观察不到带空洞的序列。quiz 课时级联删除其测验。
func (s *LessonService) Delete(claims *util.Claims, lessonID uint) error {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return util.WrapStorage(err)
	}
	if _, err := s.authorizeCourse(claims, lesson.CourseID); err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.CourseRepo.LockByID(tx, lesson.CourseID); err != nil {
			return err
		}
		// 拿到课程锁后重读课时，锁前提交的 Reorder 可能已改变它的序号
		var current model.Lesson
		if err := tx.First(&current, lesson.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrNotFound
			}
			return err
		}
		if current.QuizID != nil {
			if err := s.QuizRepo.DeleteCascade(tx, *current.QuizID); err != nil {
				return err
			}
		}
		if err := tx.Delete(&model.Lesson{}, current.ID).Error; err != nil {
			return err
		}
		return s.LessonRepo.ShiftDownAfter(tx, current.CourseID, current.LessonOrder)
	})
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return err
		}
		return util.WrapStorage(err)
	}
	return nil
}

// Reorder 接受课程课时 id 的完整排列。id 集合与当前课程不完全一致
// （缺失、多余、重复、外来 id）时返回 ErrInvalidOrder 且状态不变。
func (s *LessonService) Reorder(claims *util.Claims, courseID uint, orderedIDs []uint) ([]model.Lesson, error) {
	if _, err := s.authorizeCourse(claims, courseID); err != nil {
		return nil, err
	}

	var result []model.Lesson
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.CourseRepo.LockByID(tx, courseID); err != nil {
			return err
		}

		var lessons []model.Lesson
		if err := tx.Where("course_id = ?", courseID).Find(&lessons).Error; err != nil {
			return err
		}

		if len(orderedIDs) != len(lessons) {
			return util.ErrInvalidOrder
		}
		byID := make(map[uint]*model.Lesson, len(lessons))
		for i := range lessons {
			byID[lessons[i].ID] = &lessons[i]
		}
		seen := make(map[uint]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if byID[id] == nil || seen[id] {
				return util.ErrInvalidOrder
			}
			seen[id] = true
		}

		result = make([]model.Lesson, 0, len(orderedIDs))
		for idx, id := range orderedIDs {
			order := idx + 1
			if err := s.LessonRepo.UpdateOrder(tx, id, order); err != nil {
				return err
			}
			lesson := *byID[id]
			lesson.LessonOrder = order
			result = append(result, lesson)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, util.ErrInvalidOrder) {
			return nil, err
		}
		return nil, util.WrapStorage(err)
	}
	return result, nil
}

func (s *LessonService) List(claims *util.Claims, courseID uint) ([]model.Lesson, error) {
	if _, err := s.authorizeCourse(claims, courseID); err != nil {
		return nil, err
	}
	lessons, err := s.LessonRepo.ListByCourse(courseID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return lessons, nil
}
