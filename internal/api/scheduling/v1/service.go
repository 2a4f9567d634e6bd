// Package schedulingv1 описывает gRPC-сервис расписания ухода.
// Сообщения — обычные Go-структуры, по проводу идут в JSON (см. CodecName).
package schedulingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "care.scheduling.v1.SchedulingService"

type SchedulingServiceServer interface {
	UpsertEmployee(context.Context, *UpsertEmployeeRequest) (*Employee, error)
	UpsertPatient(context.Context, *UpsertPatientRequest) (*Patient, error)
	CreateAvailabilitySlots(context.Context, *CreateAvailabilitySlotsRequest) (*SlotsResponse, error)
	CreatePatientCareSlots(context.Context, *CreatePatientCareSlotsRequest) (*SlotsResponse, error)
	UpdatePatientCareSlot(context.Context, *UpdatePatientCareSlotRequest) (*Slot, error)
	DeleteSlot(context.Context, *DeleteSlotRequest) (*DeleteSlotResponse, error)
	FindAvailableEmployees(context.Context, *FindAvailableEmployeesRequest) (*FindAvailableEmployeesResponse, error)
	FindCareSlotsForEmployee(context.Context, *FindCareSlotsForEmployeeRequest) (*FindCareSlotsForEmployeeResponse, error)
	BookVisit(context.Context, *BookVisitRequest) (*Visit, error)
	TransitionVisit(context.Context, *TransitionVisitRequest) (*Visit, error)
}

// UnimplementedSchedulingServiceServer встраивается в реализацию, чтобы новые методы не ломали сборку.
type UnimplementedSchedulingServiceServer struct{}

func (UnimplementedSchedulingServiceServer) UpsertEmployee(context.Context, *UpsertEmployeeRequest) (*Employee, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertEmployee not implemented")
}
func (UnimplementedSchedulingServiceServer) UpsertPatient(context.Context, *UpsertPatientRequest) (*Patient, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertPatient not implemented")
}
func (UnimplementedSchedulingServiceServer) CreateAvailabilitySlots(context.Context, *CreateAvailabilitySlotsRequest) (*SlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateAvailabilitySlots not implemented")
}
func (UnimplementedSchedulingServiceServer) CreatePatientCareSlots(context.Context, *CreatePatientCareSlotsRequest) (*SlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePatientCareSlots not implemented")
}
func (UnimplementedSchedulingServiceServer) UpdatePatientCareSlot(context.Context, *UpdatePatientCareSlotRequest) (*Slot, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePatientCareSlot not implemented")
}
func (UnimplementedSchedulingServiceServer) DeleteSlot(context.Context, *DeleteSlotRequest) (*DeleteSlotResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteSlot not implemented")
}
func (UnimplementedSchedulingServiceServer) FindAvailableEmployees(context.Context, *FindAvailableEmployeesRequest) (*FindAvailableEmployeesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FindAvailableEmployees not implemented")
}
func (UnimplementedSchedulingServiceServer) FindCareSlotsForEmployee(context.Context, *FindCareSlotsForEmployeeRequest) (*FindCareSlotsForEmployeeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FindCareSlotsForEmployee not implemented")
}
func (UnimplementedSchedulingServiceServer) BookVisit(context.Context, *BookVisitRequest) (*Visit, error) {
	return nil, status.Error(codes.Unimplemented, "method BookVisit not implemented")
}
func (UnimplementedSchedulingServiceServer) TransitionVisit(context.Context, *TransitionVisitRequest) (*Visit, error) {
	return nil, status.Error(codes.Unimplemented, "method TransitionVisit not implemented")
}

func unary[Req, Resp any](name string, call func(SchedulingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SchedulingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SchedulingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SchedulingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("UpsertEmployee", SchedulingServiceServer.UpsertEmployee),
		unary("UpsertPatient", SchedulingServiceServer.UpsertPatient),
		unary("CreateAvailabilitySlots", SchedulingServiceServer.CreateAvailabilitySlots),
		unary("CreatePatientCareSlots", SchedulingServiceServer.CreatePatientCareSlots),
		unary("UpdatePatientCareSlot", SchedulingServiceServer.UpdatePatientCareSlot),
		unary("DeleteSlot", SchedulingServiceServer.DeleteSlot),
		unary("FindAvailableEmployees", SchedulingServiceServer.FindAvailableEmployees),
		unary("FindCareSlotsForEmployee", SchedulingServiceServer.FindCareSlotsForEmployee),
		unary("BookVisit", SchedulingServiceServer.BookVisit),
		unary("TransitionVisit", SchedulingServiceServer.TransitionVisit),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "care/scheduling/v1/scheduling.proto",
}

func RegisterSchedulingServiceServer(s grpc.ServiceRegistrar, srv SchedulingServiceServer) {
	s.RegisterService(&SchedulingService_ServiceDesc, srv)
}

// SchedulingServiceClient — клиент сервиса; все вызовы идут с content-subtype json.
type SchedulingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSchedulingServiceClient(cc grpc.ClientConnInterface) *SchedulingServiceClient {
	return &SchedulingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SchedulingServiceClient) UpsertEmployee(ctx context.Context, in *UpsertEmployeeRequest, opts ...grpc.CallOption) (*Employee, error) {
	return invoke[Employee](ctx, c.cc, "UpsertEmployee", in, opts)
}

func (c *SchedulingServiceClient) UpsertPatient(ctx context.Context, in *UpsertPatientRequest, opts ...grpc.CallOption) (*Patient, error) {
	return invoke[Patient](ctx, c.cc, "UpsertPatient", in, opts)
}

func (c *SchedulingServiceClient) CreateAvailabilitySlots(ctx context.Context, in *CreateAvailabilitySlotsRequest, opts ...grpc.CallOption) (*SlotsResponse, error) {
	return invoke[SlotsResponse](ctx, c.cc, "CreateAvailabilitySlots", in, opts)
}

func (c *SchedulingServiceClient) CreatePatientCareSlots(ctx context.Context, in *CreatePatientCareSlotsRequest, opts ...grpc.CallOption) (*SlotsResponse, error) {
	return invoke[SlotsResponse](ctx, c.cc, "CreatePatientCareSlots", in, opts)
}

func (c *SchedulingServiceClient) UpdatePatientCareSlot(ctx context.Context, in *UpdatePatientCareSlotRequest, opts ...grpc.CallOption) (*Slot, error) {
	return invoke[Slot](ctx, c.cc, "UpdatePatientCareSlot", in, opts)
}

func (c *SchedulingServiceClient) DeleteSlot(ctx context.Context, in *DeleteSlotRequest, opts ...grpc.CallOption) (*DeleteSlotResponse, error) {
	return invoke[DeleteSlotResponse](ctx, c.cc, "DeleteSlot", in, opts)
}

func (c *SchedulingServiceClient) FindAvailableEmployees(ctx context.Context, in *FindAvailableEmployeesRequest, opts ...grpc.CallOption) (*FindAvailableEmployeesResponse, error) {
	return invoke[FindAvailableEmployeesResponse](ctx, c.cc, "FindAvailableEmployees", in, opts)
}

func (c *SchedulingServiceClient) FindCareSlotsForEmployee(ctx context.Context, in *FindCareSlotsForEmployeeRequest, opts ...grpc.CallOption) (*FindCareSlotsForEmployeeResponse, error) {
	return invoke[FindCareSlotsForEmployeeResponse](ctx, c.cc, "FindCareSlotsForEmployee", in, opts)
}

func (c *SchedulingServiceClient) BookVisit(ctx context.Context, in *BookVisitRequest, opts ...grpc.CallOption) (*Visit, error) {
	return invoke[Visit](ctx, c.cc, "BookVisit", in, opts)
}

func (c *SchedulingServiceClient) TransitionVisit(ctx context.Context, in *TransitionVisitRequest, opts ...grpc.CallOption) (*Visit, error) {
	return invoke[Visit](ctx, c.cc, "TransitionVisit", in, opts)
}
