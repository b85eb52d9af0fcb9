package main

// @title           TalonAI Chat API
// @version         1.0
// @description     API de sessões de chat e relay para o serviço de IA do TalonAI

// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Cabeçalho de autenticação JWT usando o esquema Bearer. Exemplo: "Bearer {token}"
