package grpc

// proto.go defines the gRPC server interface of bib.scoring.v1.RiskScoringService.
// Messages are plain Go structs encoded with the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bib.scoring.v1.RiskScoringService"

// RiskScoringServiceServer is the server API for RiskScoringService.
type RiskScoringServiceServer interface {
	AssessApplication(context.Context, *AssessApplicationRequest) (*AssessApplicationResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	ExplainScore(context.Context, *ExplainScoreRequest) (*ExplainScoreResponse, error)
	SimulateScenarios(context.Context, *SimulateScenariosRequest) (*SimulateScenariosResponse, error)
	PredictDirect(context.Context, *PredictDirectRequest) (*PredictDirectResponse, error)
	GetModelInfo(context.Context, *GetModelInfoRequest) (*GetModelInfoResponse, error)
	mustEmbedUnimplementedRiskScoringServiceServer()
}

// UnimplementedRiskScoringServiceServer provides forward-compatible default implementations.
type UnimplementedRiskScoringServiceServer struct{}

func (UnimplementedRiskScoringServiceServer) AssessApplication(context.Context, *AssessApplicationRequest) (*AssessApplicationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessApplication not implemented")
}
func (UnimplementedRiskScoringServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedRiskScoringServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedRiskScoringServiceServer) ExplainScore(context.Context, *ExplainScoreRequest) (*ExplainScoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ExplainScore not implemented")
}
func (UnimplementedRiskScoringServiceServer) SimulateScenarios(context.Context, *SimulateScenariosRequest) (*SimulateScenariosResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SimulateScenarios not implemented")
}
func (UnimplementedRiskScoringServiceServer) PredictDirect(context.Context, *PredictDirectRequest) (*PredictDirectResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PredictDirect not implemented")
}
func (UnimplementedRiskScoringServiceServer) GetModelInfo(context.Context, *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetModelInfo not implemented")
}
func (UnimplementedRiskScoringServiceServer) mustEmbedUnimplementedRiskScoringServiceServer() {}

// RegisterRiskScoringServiceServer registers the RiskScoringServiceServer with the gRPC server.
func RegisterRiskScoringServiceServer(s grpclib.ServiceRegistrar, srv RiskScoringServiceServer) {
	s.RegisterService(&_RiskScoringService_serviceDesc, srv)
}

var _RiskScoringService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskScoringServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessApplication", Handler: _RiskScoringService_AssessApplication_Handler},
		{MethodName: "GetAssessment", Handler: _RiskScoringService_GetAssessment_Handler},
		{MethodName: "ListAssessments", Handler: _RiskScoringService_ListAssessments_Handler},
		{MethodName: "ExplainScore", Handler: _RiskScoringService_ExplainScore_Handler},
		{MethodName: "SimulateScenarios", Handler: _RiskScoringService_SimulateScenarios_Handler},
		{MethodName: "PredictDirect", Handler: _RiskScoringService_PredictDirect_Handler},
		{MethodName: "GetModelInfo", Handler: _RiskScoringService_GetModelInfo_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

// unary builds a method handler that runs the server's interceptor chain.
func unary[Req any, Resp any](
	method string,
	call func(RiskScoringServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RiskScoringServiceServer), ctx, req)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, r interface{}) (interface{}, error) {
			return call(srv.(RiskScoringServiceServer), ctx, r.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var (
	_RiskScoringService_AssessApplication_Handler = unary("AssessApplication", RiskScoringServiceServer.AssessApplication)
	_RiskScoringService_GetAssessment_Handler     = unary("GetAssessment", RiskScoringServiceServer.GetAssessment)
	_RiskScoringService_ListAssessments_Handler   = unary("ListAssessments", RiskScoringServiceServer.ListAssessments)
	_RiskScoringService_ExplainScore_Handler      = unary("ExplainScore", RiskScoringServiceServer.ExplainScore)
	_RiskScoringService_SimulateScenarios_Handler = unary("SimulateScenarios", RiskScoringServiceServer.SimulateScenarios)
	_RiskScoringService_PredictDirect_Handler     = unary("PredictDirect", RiskScoringServiceServer.PredictDirect)
	_RiskScoringService_GetModelInfo_Handler      = unary("GetModelInfo", RiskScoringServiceServer.GetModelInfo)
)
