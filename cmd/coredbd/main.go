// Command coredbd is an optional network front end for the engine:
// gRPC (hand-registered ServiceDesc, JSON wire codec, no protoc step)
// plus a parallel HTTP/JSON surface, both funneled through a single
// serialized worker queue so the single-threaded engine core is never
// touched from more than one goroutine at a time. A cron job enqueues
// periodic checkpoints onto that same queue.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/coredb/coredb/internal/config"
	"github.com/coredb/coredb/internal/engine"
)

var (
	flagDB             = flag.String("db", "coredb.dat", "path to the on-disk database file")
	flagHTTP           = flag.String("http", ":8080", "HTTP listen address (empty to disable)")
	flagGRPC           = flag.String("grpc", ":9090", "gRPC listen address (empty to disable)")
	flagCheckpointCron = flag.String("checkpoint-cron", "@every 1m", "cron schedule for periodic pager checkpoints")
)

// job is a unit of work run on the single serialized worker queue: it
// receives the engine, and done is closed once it has run.
type job struct {
	run  func(eng *engine.Engine)
	done chan struct{}
}

// worker owns the engine exclusively and drains jobs one at a time,
// so gRPC handlers, HTTP handlers, and the cron checkpoint never race
// on engine state.
type worker struct {
	eng   *engine.Engine
	queue chan job
}

func newWorker(eng *engine.Engine) *worker {
	w := &worker{eng: eng, queue: make(chan job, 64)}
	go w.loop()
	return w
}

func (w *worker) loop() {
	for j := range w.queue {
		j.run(w.eng)
		close(j.done)
	}
}

// submit blocks until run has executed on the worker goroutine.
func (w *worker) submit(run func(eng *engine.Engine)) {
	j := job{run: run, done: make(chan struct{})}
	w.queue <- j
	<-j.done
}

// execRequest/execResponse are the gRPC and HTTP/JSON wire types.
type execRequest struct {
	SQL string `json:"sql"`
}

type execResponse struct {
	ExecutionID string           `json:"execution_id"`
	Rows        []map[string]any `json:"rows,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// jsonCodec registers a gRPC wire codec that marshals requests and
// responses as JSON instead of protobuf, avoiding a protoc step.
type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)       { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CoreDBServer is the hand-written gRPC service interface; there is
// no .proto file, matching the teacher's manual ServiceDesc pattern.
type CoreDBServer interface {
	Execute(context.Context, *execRequest) (*execResponse, error)
}

func registerCoreDBServer(s *grpc.Server, srv CoreDBServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "coredb.CoreDB",
		HandlerType: (*CoreDBServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Execute", Handler: executeHandler},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "coredb",
	}, srv)
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(execRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoreDBServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/coredb.CoreDB/Execute"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CoreDBServer).Execute(ctx, req.(*execRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// connServer implements CoreDBServer by submitting each request to
// the shared worker queue; no two requests ever touch the engine
// concurrently.
type connServer struct {
	w *worker
}

func (c *connServer) Execute(ctx context.Context, req *execRequest) (*execResponse, error) {
	connID := uuid.New().String()
	var resp execResponse

	c.w.submit(func(eng *engine.Engine) {
		res, err := eng.Execute(req.SQL)
		if err != nil {
			resp = execResponse{ExecutionID: connID, Error: err.Error()}
			return
		}
		rows := make([]map[string]any, len(res.Rows))
		for i, row := range res.Rows {
			m := make(map[string]any, len(row))
			for k, v := range row {
				m[k] = v.Any()
			}
			rows[i] = m
		}
		resp = execResponse{ExecutionID: res.ExecutionID, Rows: rows}
	})

	return &resp, nil
}

func (c *connServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req execRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	resp, _ := c.Execute(r.Context(), &req)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func main() {
	flag.Parse()

	cfg := config.Default()
	eng, err := engine.Open(*flagDB, cfg)
	if err != nil {
		log.Fatalf("opening engine: %v", err)
	}
	defer eng.Close()

	w := newWorker(eng)
	srv := &connServer{w: w}

	sched := cron.New()
	if _, err := sched.AddFunc(*flagCheckpointCron, func() {
		w.submit(func(eng *engine.Engine) {
			if err := eng.Checkpoint(); err != nil {
				log.Printf("checkpoint failed: %v", err)
				return
			}
			log.Printf("checkpoint: %d pages resident", len(eng.DebugPagerResident()))
		})
	}); err != nil {
		log.Printf("invalid checkpoint schedule %q: %v", *flagCheckpointCron, err)
	} else {
		sched.Start()
		defer sched.Stop()
	}

	encoding.RegisterCodec(jsonCodec{})

	if *flagGRPC != "" {
		go func() {
			lis, err := net.Listen("tcp", *flagGRPC)
			if err != nil {
				log.Printf("gRPC listen error: %v", err)
				return
			}
			gs := grpc.NewServer()
			registerCoreDBServer(gs, srv)
			log.Printf("gRPC listening on %s", *flagGRPC)
			if err := gs.Serve(lis); err != nil {
				log.Printf("gRPC serve error: %v", err)
			}
		}()
	}

	if *flagHTTP != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/execute", srv.handleExecute)
		mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":   true,
				"time": time.Now().Format(time.RFC3339),
			})
		})
		log.Printf("HTTP listening on %s", *flagHTTP)
		if err := http.ListenAndServe(*flagHTTP, mux); err != nil {
			log.Fatalf("HTTP serve error: %v", err)
		}
	} else {
		select {}
	}
}
