package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func alert(id string) Alert {
	return Alert{RecordID: id, SubjectID: "s-" + id, BurnoutRisk: 90}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))
		So(q.Capacity(), ShouldEqual, 2)
		So(q.Len(ctx), ShouldEqual, 0)

		Convey("When one alert is enqueued and dequeued", func() {
			So(q.Enqueue(ctx, alert("1")), ShouldBeNil)
			So(q.Len(ctx), ShouldEqual, 1)

			got := <-q.Dequeue(ctx)

			Convey("Then the same alert comes out", func() {
				So(got.RecordID, ShouldEqual, "1")
				So(q.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, alert("1")), ShouldBeNil)
			So(q.Enqueue(ctx, alert("2")), ShouldBeNil)
			err := q.Enqueue(ctx, alert("3"))

			Convey("Then further alerts are rejected without blocking", func() {
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			So(errors.Is(q.Enqueue(cctx, alert("1")), context.Canceled), ShouldBeTrue)
		})

		Convey("When the queue is closed with pending alerts", func() {
			So(q.Enqueue(ctx, alert("1")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then it rejects new alerts but drains the old ones", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, alert("2")), ErrClosed), ShouldBeTrue)

				var drained []string
				for a := range q.Dequeue(ctx) {
					drained = append(drained, a.RecordID)
				}
				So(drained, ShouldResemble, []string{"1"})
			})
		})
	})
}

func TestInMemoryQueueConcurrentAccess(t *testing.T) {
	Convey("Given producers and consumers sharing a queue", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(16))
		const producers, perProducer = 8, 50

		var consumed sync.WaitGroup
		received := make(chan string, producers*perProducer)
		for i := 0; i < 4; i++ {
			consumed.Add(1)
			go func() {
				defer consumed.Done()
				for a := range q.Dequeue(ctx) {
					received <- a.RecordID
				}
			}()
		}

		var produced sync.WaitGroup
		for p := 0; p < producers; p++ {
			produced.Add(1)
			go func(p int) {
				defer produced.Done()
				for j := 0; j < perProducer; j++ {
					for q.Enqueue(ctx, alert(fmt.Sprintf("%d-%d", p, j))) != nil {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		produced.Wait()
		So(q.Close(), ShouldBeNil)
		consumed.Wait()
		close(received)

		Convey("Then every alert is delivered exactly once", func() {
			seen := make(map[string]bool)
			for id := range received {
				So(seen[id], ShouldBeFalse)
				seen[id] = true
			}
			So(len(seen), ShouldEqual, producers*perProducer)
		})
	})
}
