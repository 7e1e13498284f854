package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/service"
)

// App wires the repositories and services over one connection pool. Hosts
// embed it and expose whatever surface they need; there is no transport layer
// here.
type App struct {
	Availability *service.AvailabilityService
	Enrollments  *service.EnrollmentService
	Booking      *service.BookingService
	Scheduling   *service.SchedulingService
	Maintenance  *Maintenance
}

func New(pool *pgxpool.Pool, lockTimeout, maintenanceInterval time.Duration, logger *zap.Logger) *App {
	studentRepo := repository.NewStudentRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	availRepo := repository.NewAvailabilityRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)

	return &App{
		Availability: service.NewAvailabilityService(pool, availRepo, studentRepo, teacherRepo, logger),
		Enrollments:  service.NewEnrollmentService(studentRepo, teacherRepo, courseRepo, enrollmentRepo, logger),
		Booking:      service.NewBookingService(pool, lessonRepo, enrollmentRepo, availRepo, lockTimeout, logger),
		Scheduling:   service.NewSchedulingService(enrollmentRepo, courseRepo, availRepo, lessonRepo, logger),
		Maintenance:  NewMaintenance(lessonRepo, maintenanceInterval, logger),
	}
}
