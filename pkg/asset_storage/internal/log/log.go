package storagelog

import (
	"go.uber.org/zap"
)

// headMsg is a distinctive part of all messages.
const headMsg = "local asset storage operation"

// Write writes message about asset storage operation to logger.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Debug(headMsg, fields...)
}

// PathField returns logger's field for database or container path.
func PathField(p string) zap.Field {
	return zap.String("path", p)
}

// KindField returns logger's field for asset kind.
func KindField(kind string) zap.Field {
	return zap.String("kind", kind)
}

// IDField returns logger's field for record identifier.
func IDField(id uint32) zap.Field {
	return zap.Uint32("id", id)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// DepthField returns logger's field for dependency depth.
func DepthField(depth int) zap.Field {
	return zap.Int("depth", depth)
}
