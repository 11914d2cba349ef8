package server

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type methodType struct {
	method    reflect.Method
	ArgType   reflect.Type // Element type of the *Args parameter
	ReplyType reflect.Type // Element type of the *Reply parameter
}

// service holds a registered receiver and its callable methods, keyed by
// method name. The receiver's struct type name doubles as the service name.
type service struct {
	name   string
	rcvr   reflect.Value
	method map[string]*methodType
}

// NewService wraps a receiver and scans its exported methods for the RPC
// shape: func (recv) Method(*Args, *Reply) error. Methods with any other
// signature are skipped silently.
func NewService(rcvr any) (*service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("rpc: rcvr must be a pointer, got %s", typ.Kind())
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rpc: rcvr must point to a struct, got %s", typ.Elem().Kind())
	}

	srv := &service{
		name:   typ.Elem().Name(),
		rcvr:   reflect.ValueOf(rcvr),
		method: make(map[string]*methodType),
	}

	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !rpcShape(m.Type) {
			continue
		}
		srv.method[m.Name] = &methodType{
			method:    m,
			ArgType:   m.Type.In(1).Elem(),
			ReplyType: m.Type.In(2).Elem(),
		}
	}

	if len(srv.method) == 0 {
		return nil, fmt.Errorf("rpc: %s has no methods of the form Method(*Args, *Reply) error", srv.name)
	}
	return srv, nil
}

// rpcShape reports whether t is func(recv, *Args, *Reply) error.
func rpcShape(t reflect.Type) bool {
	return t.NumIn() == 3 &&
		t.NumOut() == 1 &&
		t.Out(0) == errorType &&
		t.In(1).Kind() == reflect.Ptr &&
		t.In(2).Kind() == reflect.Ptr
}

// Call invokes the method via reflection and unwraps its error result.
func (s *service) Call(mType *methodType, argv, replyv reflect.Value) error {
	results := mType.method.Func.Call([]reflect.Value{s.rcvr, argv, replyv})
	if err, ok := results[0].Interface().(error); ok && err != nil {
		return err
	}
	return nil
}
