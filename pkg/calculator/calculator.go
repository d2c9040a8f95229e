package calculator

import (
	"context"

	"github.com/GGmuzem/stackcalc/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "calculator.Calculator"

// Полные имена методов сервиса
const (
	GetTaskMethod      = "/" + serviceName + "/GetTask"
	SubmitResultMethod = "/" + serviceName + "/SubmitResult"
	EvaluateMethod     = "/" + serviceName + "/Evaluate"
)

// CalculatorClient клиентская сторона сервиса Calculator
type CalculatorClient interface {
	GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*Task, error)
	SubmitResult(ctx context.Context, in *TaskResult, opts ...grpc.CallOption) (*SubmitResultResponse, error)
	Evaluate(ctx context.Context, in *EvaluateRequest, opts ...grpc.CallOption) (*EvaluateResponse, error)
}

// CalculatorServer серверная сторона сервиса Calculator
type CalculatorServer interface {
	GetTask(ctx context.Context, in *GetTaskRequest) (*Task, error)
	SubmitResult(ctx context.Context, in *TaskResult) (*SubmitResultResponse, error)
	Evaluate(ctx context.Context, in *EvaluateRequest) (*EvaluateResponse, error)
}

// UnimplementedCalculatorServer базовая реализация CalculatorServer
type UnimplementedCalculatorServer struct{}

func (UnimplementedCalculatorServer) GetTask(context.Context, *GetTaskRequest) (*Task, error) {
	return nil, status.Errorf(codes.Unimplemented, "метод GetTask не реализован")
}

func (UnimplementedCalculatorServer) SubmitResult(context.Context, *TaskResult) (*SubmitResultResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "метод SubmitResult не реализован")
}

func (UnimplementedCalculatorServer) Evaluate(context.Context, *EvaluateRequest) (*EvaluateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "метод Evaluate не реализован")
}

// RegisterCalculatorServer регистрирует сервер Calculator в gRPC
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTask",
			Handler:    getTaskHandler,
		},
		{
			MethodName: "SubmitResult",
			Handler:    submitResultHandler,
		},
		{
			MethodName: "Evaluate",
			Handler:    evaluateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calculator.proto",
}

func getTaskHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTaskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).GetTask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetTaskMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).GetTask(ctx, req.(*GetTaskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func submitResultHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TaskResult)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).SubmitResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SubmitResultMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).SubmitResult(ctx, req.(*TaskResult))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EvaluateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*EvaluateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// NewCalculatorClient создает нового клиента для сервиса Calculator
func NewCalculatorClient(cc grpc.ClientConnInterface) CalculatorClient {
	return &calculatorClient{cc}
}

type calculatorClient struct {
	cc grpc.ClientConnInterface
}

func (c *calculatorClient) GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*Task, error) {
	out := new(Task)
	if err := c.cc.Invoke(ctx, GetTaskMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *calculatorClient) SubmitResult(ctx context.Context, in *TaskResult, opts ...grpc.CallOption) (*SubmitResultResponse, error) {
	out := new(SubmitResultResponse)
	if err := c.cc.Invoke(ctx, SubmitResultMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *calculatorClient) Evaluate(ctx context.Context, in *EvaluateRequest, opts ...grpc.CallOption) (*EvaluateResponse, error) {
	out := new(EvaluateResponse)
	if err := c.cc.Invoke(ctx, EvaluateMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// withCodec добавляет JSON-кодек к опциям вызова
func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// GetTaskRequest запрос на получение задачи
type GetTaskRequest struct {
	AgentID int32 `json:"agent_id"`
}

// Task задача на вычисление выражения. Пустая задача (ID == 0) означает,
// что готовых задач нет.
type Task struct {
	ID            int32  `json:"id"`
	ExpressionID  string `json:"expression_id"`
	Expression    string `json:"expression"`
	OperationTime int32  `json:"operation_time"`
}

// TaskResult результат выполнения задачи
type TaskResult struct {
	ID           int32   `json:"id"`
	ExpressionID string  `json:"expression_id,omitempty"`
	Result       float64 `json:"result"`
	Error        string  `json:"error,omitempty"`
	ErrorKind    string  `json:"error_kind,omitempty"`
}

// SubmitResultResponse ответ на отправку результата
type SubmitResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EvaluateRequest запрос на синхронное вычисление
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse результат синхронного вычисления. Результат передаётся
// строкой, так как JSON не представляет бесконечности. Ошибка вычисления
// передаётся в полях Error и Kind, а не статусом gRPC.
type EvaluateResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// ConvertTaskToGRPC конвертирует модель Task в gRPC формат
func ConvertTaskToGRPC(task models.Task) *Task {
	return &Task{
		ID:            int32(task.ID),
		ExpressionID:  task.ExpressionID,
		Expression:    task.Expression,
		OperationTime: int32(task.OperationTime),
	}
}

// ConvertGRPCToTask конвертирует gRPC Task в модель Task
func ConvertGRPCToTask(task *Task) models.Task {
	return models.Task{
		ID:            int(task.ID),
		ExpressionID:  task.ExpressionID,
		Expression:    task.Expression,
		OperationTime: int(task.OperationTime),
	}
}

// ConvertTaskResultToGRPC конвертирует TaskResult в gRPC формат
func ConvertTaskResultToGRPC(result models.TaskResult) *TaskResult {
	return &TaskResult{
		ID:           int32(result.ID),
		ExpressionID: result.ExpressionID,
		Result:       result.Result,
		Error:        result.Error,
		ErrorKind:    result.ErrorKind,
	}
}

// ConvertGRPCToTaskResult конвертирует gRPC TaskResult в модель
func ConvertGRPCToTaskResult(result *TaskResult) models.TaskResult {
	return models.TaskResult{
		ID:           int(result.ID),
		ExpressionID: result.ExpressionID,
		Result:       result.Result,
		Error:        result.Error,
		ErrorKind:    result.ErrorKind,
	}
}
