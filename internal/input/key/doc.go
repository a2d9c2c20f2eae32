// Package key provides modifier bits and key symbol names for the
// injection side of the keyboard.
//
// Modifier bits follow the X11 state mask layout (shift, lock, control,
// mod1..mod5) because layouts, label selection and the injection sink all
// speak in those bits:
//
//   - ModShift   1
//   - ModCaps    2
//   - ModCtrl    4
//   - ModAlt     8   (mod1)
//   - ModNumLock 16  (mod2)
//   - ModMod3    32
//   - ModSuper   64  (mod4)
//   - ModAltGr   128 (mod5)
//
// Modifier names in layout files are resolved with ParseModifier. Unknown
// names are an error so the caller can log them and leave the key inert.
package key
