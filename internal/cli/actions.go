package cli

// Indirection layer to allow stubbing in tests

var (
	fnEnvCheck = envCheck

	fnServerLogin  = serverLogin
	fnServerPull   = serverPull
	fnServerStart  = serverStart
	fnServerWait   = serverWait
	fnServerStop   = serverStop
	fnServerStatus = serverStatus
	fnServerLogs   = serverLogs

	fnModelsList = modelsList
	fnChat       = chat

	fnAdapterDeploy = adapterDeploy
	fnAdapterList   = adapterList
	fnAdapterRemove = adapterRemove
	fnAdapterWatch  = adapterWatch

	fnProxyServe = proxyServe
)
