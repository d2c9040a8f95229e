package calculator

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName имя content-subtype, под которым зарегистрирован JSON-кодек.
// Сообщения сервиса описаны обычными структурами, а не protobuf.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
