package platform

import (
	"fmt"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/osascript"
)

// Scripts run under osascript -l JavaScript and print one JSON value.

func locateScript(app, title string) string {
	return fmt.Sprintf(`(() => {
  try {
    const app = Application(%s);
    const title = %s;
    if (!app.running()) return JSON.stringify({status: "not_running"});
    const w = app.windows().find(w => { try { return w.name().includes(title); } catch (e) { return false; } });
    if (!w) return JSON.stringify({status: "no_match"});
    let minimized = false;
    try { minimized = w.miniaturized(); if (minimized) w.miniaturized = false; } catch (e) {}
    app.activate();
    try { w.index = 1; } catch (e) {}
    let id = 0;
    try { id = w.id(); } catch (e) {}
    const b = w.bounds();
    return JSON.stringify({status: "ok", window: {id: id, title: w.name(), minimized: minimized, x: b.x, y: b.y, width: b.width, height: b.height}});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`, osascript.JSString(app), osascript.JSString(title))
}

func frontBoundsScript(app string) string {
	return fmt.Sprintf(`(() => {
  try {
    const app = Application(%s);
    if (!app.running()) return JSON.stringify({status: "not_running"});
    const ws = app.windows();
    if (ws.length === 0) return JSON.stringify({status: "no_match"});
    const b = ws[0].bounds();
    return JSON.stringify({status: "ok", window: {title: ws[0].name(), x: b.x, y: b.y, width: b.width, height: b.height}});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`, osascript.JSString(app))
}

func setFrontBoundsScript(app string, r geometry.LogicalRect) string {
	return fmt.Sprintf(`(() => {
  try {
    const app = Application(%s);
    if (!app.running()) return JSON.stringify({status: "not_running"});
    const ws = app.windows();
    if (ws.length === 0) return JSON.stringify({status: "no_match"});
    ws[0].bounds = {x: %d, y: %d, width: %d, height: %d};
    return JSON.stringify({status: "ok"});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`, osascript.JSString(app), r.X, r.Y, r.Width, r.Height)
}

func activateScript(app string) string {
	return fmt.Sprintf(`(() => {
  try {
    const app = Application(%s);
    if (!app.running()) return JSON.stringify({status: "not_running"});
    app.activate();
    return JSON.stringify({status: "ok"});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`, osascript.JSString(app))
}

const frontmostAppScript = `(() => {
  try {
    const p = Application("System Events").processes.whose({frontmost: true})();
    if (p.length === 0) return JSON.stringify({status: "no_match"});
    return JSON.stringify({status: "ok", name: p[0].name()});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`

func processWindowScript(app string) string {
	return fmt.Sprintf(`(() => {
  try {
    const se = Application("System Events");
    const p = se.processes.byName(%s);
    if (!p.exists()) return JSON.stringify({status: "not_running"});
    const ws = p.windows();
    if (ws.length === 0) return JSON.stringify({status: "no_match"});
    const pos = ws[0].position(), size = ws[0].size();
    return JSON.stringify({status: "ok", window: {title: ws[0].name(), x: pos[0], y: pos[1], width: size[0], height: size[1]}});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`, osascript.JSString(app))
}

func setProcessWindowScript(app, property string, a, b int) string {
	return fmt.Sprintf(`(() => {
  try {
    const p = Application("System Events").processes.byName(%s);
    if (!p.exists()) return JSON.stringify({status: "not_running"});
    const ws = p.windows();
    if (ws.length === 0) return JSON.stringify({status: "no_match"});
    ws[0].%s = [%d, %d];
    return JSON.stringify({status: "ok"});
  } catch (e) {
    return JSON.stringify({status: "error", message: String(e)});
  }
})()`, osascript.JSString(app), property, a, b)
}

// Frames are converted to a top-left origin at the primary display, the
// space window bounds use.
// captureTargetsScript lists normal-layer windows by CGWindowID, the id
// screencapture -l expects. Window titles need screen recording permission.
const captureTargetsScript = `ObjC.import('CoreGraphics');
(() => {
  const opts = $.kCGWindowListOptionOnScreenOnly | $.kCGWindowListExcludeDesktopElements;
  const list = ObjC.deepUnwrap(ObjC.castRefToObject($.CGWindowListCopyWindowInfo(opts, $.kCGNullWindowID))) || [];
  return JSON.stringify(list
    .filter(w => w.kCGWindowLayer === 0)
    .map(w => ({app: w.kCGWindowOwnerName || "", title: w.kCGWindowName || "", id: w.kCGWindowNumber})));
})()`

const displaysScript = `ObjC.import('AppKit');
(() => {
  const screens = $.NSScreen.screens;
  const n = screens.count;
  const out = [];
  if (n === 0) return JSON.stringify(out);
  const primaryHeight = screens.objectAtIndex(0).frame.size.height;
  for (let i = 0; i < n; i++) {
    const s = screens.objectAtIndex(i);
    const f = s.frame;
    let name = "";
    try { name = ObjC.unwrap(s.localizedName); } catch (e) {}
    out.push({
      id: i,
      name: name || ("Display " + i),
      x: f.origin.x,
      y: primaryHeight - f.origin.y - f.size.height,
      width: f.size.width,
      height: f.size.height,
      scale: s.backingScaleFactor,
      main: i === 0
    });
  }
  return JSON.stringify(out);
})()`

func permissionScript(kind PermissionKind, request bool) string {
	switch kind {
	case ScreenRecording:
		call := "$.CGPreflightScreenCaptureAccess()"
		if request {
			call = "$.CGRequestScreenCaptureAccess()"
		}
		return `ObjC.import('CoreGraphics');
JSON.stringify({granted: ` + call + ` === true})`
	default:
		call := "$.AXIsProcessTrusted()"
		if request {
			call = "$.AXIsProcessTrustedWithOptions($.NSDictionary.dictionaryWithObjectForKey(true, 'AXTrustedCheckOptionPrompt'))"
		}
		return `ObjC.import('ApplicationServices');
JSON.stringify({granted: ` + call + ` === true})`
	}
}

func defaultAppScript(path string) string {
	return fmt.Sprintf(`tell application "System Events" to get name of (get default application of file %s)`, osascript.ASString(path))
}
