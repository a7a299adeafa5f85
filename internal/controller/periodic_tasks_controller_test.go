package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ritmofit/cupos/internal/controller/periodicjobs"
	"github.com/ritmofit/cupos/pkg/cache/inmemory"
	"github.com/ritmofit/cupos/pkg/seats"
)

type countingTask struct {
	name     string
	interval time.Duration
	runs     atomic.Int32
	err      error
}

func (c *countingTask) GetName() string { return c.name }

func (c *countingTask) GetInterval() time.Duration { return c.interval }

func (c *countingTask) Run(context.Context) error {
	c.runs.Add(1)
	return c.err
}

var _ = Describe("Periodic Tasks Controller", func() {
	var (
		store *seats.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		c, err := inmemory.NewCache(&inmemory.Config{DefaultExpiration: 60, CleanupInterval: 120})
		Expect(err).NotTo(HaveOccurred())
		store = seats.New(c)
		ctx = context.Background()
	})

	Context("When building the controller", func() {
		It("registers the seat audit job", func() {
			ptc, err := NewPeriodicTasksController(store, PeriodicTasksOptions{AuditInterval: time.Minute})
			Expect(err).NotTo(HaveOccurred())

			tasks := ptc.TaskManager().Tasks()
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].GetName()).To(Equal(periodicjobs.SeatAuditJobName))
			Expect(tasks[0].GetInterval()).To(Equal(time.Minute))
		})

		It("rejects a missing store", func() {
			_, err := NewPeriodicTasksController(nil, PeriodicTasksOptions{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("When running", func() {
		It("runs tasks immediately and on every tick until cancelled", func() {
			ptc, err := NewPeriodicTasksController(store, PeriodicTasksOptions{AuditInterval: time.Hour})
			Expect(err).NotTo(HaveOccurred())

			fast := &countingTask{name: "fast", interval: 20 * time.Millisecond}
			failing := &countingTask{name: "failing", interval: time.Hour, err: errors.New("boom")}
			ptc.TaskManager().AddTask(fast)
			ptc.TaskManager().AddTask(failing)

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- ptc.Start(runCtx) }()

			Eventually(func() int32 { return fast.runs.Load() }, 2*time.Second, 10*time.Millisecond).
				Should(BeNumerically(">=", 3))
			Expect(failing.runs.Load()).To(Equal(int32(1)))

			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})

		It("stops cleanly when cancelled during the initial delay", func() {
			ptc, err := NewPeriodicTasksController(store, PeriodicTasksOptions{InitialDelay: time.Hour})
			Expect(err).NotTo(HaveOccurred())

			runCtx, cancel := context.WithCancel(ctx)
			cancel()
			Expect(ptc.Start(runCtx)).To(Succeed())
		})

		It("reports over-capacity classes through the audit job", func() {
			_, err := store.Initialize(ctx, "c1", 2, 5)
			Expect(err).NotTo(HaveOccurred())

			job, err := periodicjobs.NewSeatAuditJob(store, nil, time.Hour)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Run(ctx)).To(Succeed())
			Expect(job.LastReport().OverCapacity).To(ConsistOf("c1"))
		})
	})

	Context("PeriodicTaskManager", func() {
		It("refuses to start twice", func() {
			mgr := periodicjobs.NewPeriodicTaskManager()
			mgr.AddTask(&countingTask{name: "t", interval: time.Hour})

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			Expect(mgr.RunAll(runCtx)).To(Succeed())
			Expect(mgr.RunAll(runCtx)).NotTo(Succeed())
			cancel()
			mgr.Wait()
		})

		It("rejects tasks without an interval", func() {
			mgr := periodicjobs.NewPeriodicTaskManager()
			mgr.AddTask(&countingTask{name: "zero"})
			Expect(mgr.RunAll(ctx)).To(HaveOccurred())
		})
	})
})
