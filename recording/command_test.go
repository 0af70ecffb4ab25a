// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"testing"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		ct   CommandType
		want string
	}{
		{CmdSave, "Save"},
		{CmdRestore, "Restore"},
		{CmdSetTransform, "SetTransform"},
		{CmdClipRect, "ClipRect"},
		{CmdFillRect, "FillRect"},
		{CmdStrokeRect, "StrokeRect"},
		{CmdClearRect, "ClearRect"},
		{CmdFillPath, "FillPath"},
		{CmdStrokePath, "StrokePath"},
		{CmdDrawImage, "DrawImage"},
		{CmdDrawText, "DrawText"},
		{CmdPutImageData, "PutImageData"},
		{CommandType(254), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CommandType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommandTypes(t *testing.T) {
	commands := map[CommandType]Command{
		CmdSave:         SaveCommand{},
		CmdRestore:      RestoreCommand{},
		CmdSetTransform: SetTransformCommand{},
		CmdClipRect:     ClipRectCommand{},
		CmdFillRect:     FillRectCommand{},
		CmdStrokeRect:   StrokeRectCommand{},
		CmdClearRect:    ClearRectCommand{},
		CmdFillPath:     FillPathCommand{},
		CmdStrokePath:   StrokePathCommand{},
		CmdDrawImage:    DrawImageCommand{},
		CmdDrawText:     DrawTextCommand{},
		CmdPutImageData: PutImageDataCommand{},
	}
	for want, cmd := range commands {
		if got := cmd.Type(); got != want {
			t.Errorf("%T.Type() = %v, want %v", cmd, got, want)
		}
	}
}
