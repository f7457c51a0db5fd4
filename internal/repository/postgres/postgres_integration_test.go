//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/repository"
	"github.com/taskboard/taskboard-go/internal/repository/postgres"
)

var (
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
)

var _ = BeforeSuite(func() {
	ctx := context.Background()

	var err error
	container, err = tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("taskboard_test"),
		tcpostgres.WithUsername("taskboard"),
		tcpostgres.WithPassword("taskboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	migrator, err := repository.NewMigrator("postgres", connStr)
	Expect(err).NotTo(HaveOccurred())
	Expect(migrator.Up()).To(Succeed())
	Expect(migrator.Close()).To(Succeed())

	pool, err = postgres.NewPool(ctx, connStr)
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if pool != nil {
		pool.Close()
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
})

func createUser(ctx context.Context, username string) *model.User {
	user := &model.User{Username: username, PasswordHash: "hash"}
	Expect(postgres.NewUserRepository(pool).Create(ctx, user)).To(Succeed())
	return user
}

var _ = Describe("UserRepository", func() {
	It("rejects a second user with the same username", func() {
		ctx := context.Background()
		username := "dup_" + ulid.Make().String()
		createUser(ctx, username)

		err := postgres.NewUserRepository(pool).Create(ctx, &model.User{Username: username, PasswordHash: "x"})
		Expect(err).To(MatchError(repository.ErrDuplicate))
	})

	It("finds users by username and id", func() {
		ctx := context.Background()
		user := createUser(ctx, "find_"+ulid.Make().String())
		repo := postgres.NewUserRepository(pool)

		byName, err := repo.GetByUsername(ctx, user.Username)
		Expect(err).NotTo(HaveOccurred())
		Expect(byName.ID).To(Equal(user.ID))

		byID, err := repo.GetByID(ctx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Username).To(Equal(user.Username))
	})
})

var _ = Describe("Task lifecycle", func() {
	var (
		ctx      context.Context
		owner    *model.User
		projects *postgres.ProjectRepository
		tasks    *postgres.TaskRepository
		tx       *postgres.Transactor
	)

	BeforeEach(func() {
		ctx = context.Background()
		owner = createUser(ctx, "owner_"+ulid.Make().String())
		projects = postgres.NewProjectRepository(pool)
		tasks = postgres.NewTaskRepository(pool)
		tx = postgres.NewTransactor(pool)
	})

	It("creates a task together with its project update in one transaction", func() {
		project := model.NewProject(owner.ID, "Roadmap")
		Expect(projects.Save(ctx, project)).To(Succeed())

		deadline := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Microsecond)
		task := model.NewTask("Ship it", "v1", &deadline, model.PriorityHigh, time.Now())

		err := tx.InTx(ctx, func(ctx context.Context) error {
			project.AddTask(task)
			if err := projects.Save(ctx, project); err != nil {
				return err
			}
			return tasks.Save(ctx, task)
		})
		Expect(err).NotTo(HaveOccurred())

		stored, err := tasks.GetByID(ctx, task.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.ProjectID).To(Equal(project.ID))
		Expect(stored.Issued.Equal(task.Issued)).To(BeTrue())
		Expect(stored.Deadline).NotTo(BeNil())
		Expect(stored.Deadline.Equal(deadline)).To(BeTrue())
		Expect(stored.HoursSpent).To(BeZero())
	})

	It("keeps issued and project fixed on update", func() {
		project := model.NewProject(owner.ID, "Fixed")
		Expect(projects.Save(ctx, project)).To(Succeed())

		task := model.NewTask("t", "", nil, model.PriorityLow, time.Now())
		project.AddTask(task)
		Expect(tasks.Save(ctx, task)).To(Succeed())
		issued := task.Issued

		task.Title = "renamed"
		task.HoursSpent = 4
		task.Issued = issued.Add(time.Hour)
		Expect(tasks.Save(ctx, task)).To(Succeed())

		stored, err := tasks.GetByID(ctx, task.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Title).To(Equal("renamed"))
		Expect(stored.HoursSpent).To(Equal(4))
		Expect(stored.Issued.Equal(issued)).To(BeTrue())
	})

	It("rolls back the task when the transaction fails", func() {
		project := model.NewProject(owner.ID, "Rollback")
		Expect(projects.Save(ctx, project)).To(Succeed())

		task := model.NewTask("doomed", "", nil, model.PriorityNormal, time.Now())
		err := tx.InTx(ctx, func(ctx context.Context) error {
			project.AddTask(task)
			if err := tasks.Save(ctx, task); err != nil {
				return err
			}
			return repository.ErrDuplicate
		})
		Expect(err).To(MatchError(repository.ErrDuplicate))

		_, err = tasks.GetByID(ctx, task.ID)
		Expect(err).To(MatchError(repository.ErrNotFound))
	})

	It("refuses tasks for a missing project", func() {
		task := model.NewTask("orphan", "", nil, model.PriorityNormal, time.Now())
		task.ProjectID = ulid.Make()

		Expect(tasks.Save(ctx, task)).To(MatchError(repository.ErrNotFound))
	})

	It("deletes a project's tasks with the project", func() {
		project := model.NewProject(owner.ID, "Doomed")
		Expect(projects.Save(ctx, project)).To(Succeed())
		for i := 0; i < 3; i++ {
			task := model.NewTask("t", "", nil, model.PriorityNormal, time.Now())
			project.AddTask(task)
			Expect(tasks.Save(ctx, task)).To(Succeed())
		}

		err := tx.InTx(ctx, func(ctx context.Context) error {
			if err := tasks.DeleteByProject(ctx, project.ID); err != nil {
				return err
			}
			return projects.Delete(ctx, project.ID)
		})
		Expect(err).NotTo(HaveOccurred())

		remaining, err := tasks.ListByProject(ctx, project.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(remaining).To(BeEmpty())

		_, err = projects.GetByID(ctx, project.ID)
		Expect(err).To(MatchError(repository.ErrNotFound))
	})
})
